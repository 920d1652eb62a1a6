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

package tracing

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
	"rivaas.dev/web/telemetry/semconv"
)

// MiddlewareOption configures the middleware returned by [Tracer.Middleware].
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	excludePaths    map[string]bool
	excludePrefixes []string
	headers         []string
}

// WithExcludePaths skips tracing for the exact paths given.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, p := range paths {
			c.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips tracing for paths under the given prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithHeaders records the given request headers as span attributes named
// http.request.header.<lowercase name>. Credential headers are never
// recorded.
func WithHeaders(headers ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, h := range headers {
			if !sensitiveHeaders[strings.ToLower(h)] {
				c.headers = append(c.headers, h)
			}
		}
	}
}

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

func (c *middlewareConfig) excluded(path string) bool {
	if c.excludePaths[path] {
		return true
	}
	for _, prefix := range c.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware returns a router.Middleware that wraps the rest of the chain
// in a server span. Install it before the routing middleware so the span
// can be named after the matched route.
func (t *Tracer) Middleware(opts ...MiddlewareOption) router.Middleware {
	cfg := &middlewareConfig{excludePaths: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return router.MiddlewareFunc(func(r *http.Request, next router.Handler) (*router.Response, error) {
		if cfg.excluded(r.URL.Path) {
			return next.Handle(r)
		}

		ctx, span := t.StartRequestSpan(r)
		for _, h := range cfg.headers {
			if v := r.Header.Get(h); v != "" {
				span.SetAttributes(attribute.String(semconv.HTTPRequestHeaderPrefix+strings.ToLower(h), v))
			}
		}

		r, matched := middleware.TrackRoute(r.WithContext(ctx))
		resp, err := next.Handle(r)

		if tmpl := matched.Template(); tmpl != "" {
			span.SetName(r.Method + " " + tmpl)
			span.SetAttributes(attribute.String(semconv.HTTPRoute, tmpl))
			if name := matched.Name(); name != "" {
				span.SetAttributes(attribute.String(semconv.RouteName, name))
			}
		}
		status, _ := middleware.Outcome(resp, err)
		t.FinishRequestSpan(span, status, err)
		return resp, err
	})
}
