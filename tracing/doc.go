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

// Package tracing creates OpenTelemetry server spans for requests flowing
// through a dispatcher.
//
//	tracer := tracing.MustNew(
//	    tracing.WithServiceName("shop"),
//	    tracing.WithServiceVersion("v1.4.0"),
//	    tracing.WithStdout(),
//	)
//	defer tracer.Shutdown(context.Background())
//
//	d := router.MustNewDispatcher([]router.Middleware{
//	    tracer.Middleware(tracing.WithExcludePaths("/healthz")),
//	    routing.New(routes),
//	})
//
// Incoming trace context is extracted from the request headers, so spans
// join the caller's trace. Once the chain returns, the span is renamed after
// the matched route template and marked as an error for 4xx and 5xx
// outcomes.
//
// # Providers
//
// Without an exporter option the tracer builds an SDK provider that records
// spans but exports nothing. [WithStdout] writes finished spans as JSON,
// and [WithTracerProvider] hands over a provider owned by the caller, which
// Shutdown then leaves alone.
//
// # Global State
//
// The global OpenTelemetry tracer provider and propagator are only replaced
// when [WithGlobalTracerProvider] is given.
package tracing
