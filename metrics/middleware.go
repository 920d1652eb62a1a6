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

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
)

// UnmatchedRoute is the route label of requests no route answered.
const UnmatchedRoute = "unmatched"

var knownMethods = map[string]bool{
	http.MethodGet: true, http.MethodHead: true, http.MethodPost: true,
	http.MethodPut: true, http.MethodPatch: true, http.MethodDelete: true,
	http.MethodConnect: true, http.MethodOptions: true, http.MethodTrace: true,
}

// Middleware returns a router.Middleware recording the HTTP metrics for
// every request that is not excluded. Install it before the routing
// middleware so the matched route can be reported.
func (r *Recorder) Middleware(opts ...MiddlewareOption) router.Middleware {
	cfg := &middlewareConfig{filter: newPathFilter()}
	for _, opt := range opts {
		opt(cfg)
	}

	return router.MiddlewareFunc(func(req *http.Request, next router.Handler) (*router.Response, error) {
		if cfg.filter.excludes(req.URL.Path) {
			return next.Handle(req)
		}

		req, matched := middleware.TrackRoute(req)
		r.inFlight.Inc()
		start := time.Now()
		resp, err := next.Handle(req)
		elapsed := time.Since(start)
		r.inFlight.Dec()

		status, size := middleware.Outcome(resp, err)
		r.Observe(req.Method, matched.Template(), status, size, elapsed)
		return resp, err
	})
}

// Observe records one finished request. An empty route is reported as
// [UnmatchedRoute] and unknown methods as OTHER.
func (r *Recorder) Observe(method, route string, status, size int, elapsed time.Duration) {
	if !knownMethods[method] {
		method = "OTHER"
	}
	if route == "" {
		route = UnmatchedRoute
	}
	labels := []string{method, route, strconv.Itoa(status)}
	r.requests.WithLabelValues(labels...).Inc()
	r.duration.WithLabelValues(labels...).Observe(elapsed.Seconds())
	r.size.WithLabelValues(labels...).Observe(float64(size))
}
