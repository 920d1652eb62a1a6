// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics records Prometheus metrics for requests flowing through
// a dispatcher.
//
// A [Recorder] owns a registry and the standard HTTP metrics:
//
//	http_requests_total{method,route,status}
//	http_request_duration_seconds{method,route,status}
//	http_response_size_bytes{method,route,status}
//	http_requests_in_flight
//
// Its [Recorder.Middleware] fills them in, and [Recorder.Handler] serves the
// registry in the Prometheus exposition format:
//
//	recorder := metrics.MustNew(metrics.WithNamespace("shop"))
//	d := router.MustNewDispatcher([]router.Middleware{
//	    recorder.Middleware(metrics.WithExcludePaths("/metrics")),
//	    routing.New(routes),
//	})
//
// The route label is the template of the matched route, or "unmatched"
// when no route answered. Raw paths never become label values.
//
// # Custom Metrics
//
// Counters, gauges and histograms can be created on the fly by name. Names
// are validated, the http_ and router_ prefixes are reserved, and the number
// of custom metrics is capped (see [WithMaxCustomMetrics]):
//
//	_ = recorder.IncrementCounter("orders_total", map[string]string{"kind": "web"})
//	_ = recorder.SetGauge("queue_depth", 42, nil)
package metrics
