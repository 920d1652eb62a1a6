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

// Package routing dispatches requests to the handlers of matching routes.
//
// The middleware asks a matcher (usually a route.Group) for the route of each
// request. On a match it stores the route parameters as request attributes
// and calls the route handler, handing it the rest of the chain as next.
// When no route matches it delegates to next, so a later middleware or the
// dispatcher fallback decides what to answer. A route that matches but has
// no handler is a configuration error and is returned as a
// *route.NoHandlerError.
package routing

import (
	"log/slog"
	"net/http"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
	"rivaas.dev/web/router/route"
)

// Matcher resolves requests to routes.
type Matcher interface {
	Match(r *http.Request) route.MatchResult
}

// Option configures the routing middleware.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger logs unmatched and misconfigured routes at debug and error level.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Middleware is the routing middleware.
type Middleware struct {
	matcher Matcher
	logger  *slog.Logger
}

// New returns routing middleware backed by matcher.
//
// Example:
//
//	d := router.MustNewDispatcher([]router.Middleware{
//	    requestid.New(),
//	    routing.New(routes),
//	})
func New(matcher Matcher, opts ...Option) *Middleware {
	cfg := &config{logger: router.NoopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Middleware{matcher: matcher, logger: cfg.logger}
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	res := m.matcher.Match(r)

	switch res.Outcome {
	case route.Matched:
		attrs := make(map[string]any, len(res.Params)+2)
		for k, v := range res.Params {
			attrs[k] = v
		}
		attrs[middleware.RouteParamsAttribute] = res.Params
		attrs[middleware.RouteNameAttribute] = res.Name
		if mr := middleware.MatchedRouteFrom(r.Context()); mr != nil {
			mr.Set(res.Name, res.Route.Template())
		}
		return res.Handler.Process(router.WithAttributes(r, attrs), next)

	case route.NoHandler:
		m.logger.ErrorContext(r.Context(), "route has no handler",
			"route", res.Route.String(),
			"method", r.Method,
			"path", r.URL.Path,
		)
		return nil, res.Err()

	default:
		m.logger.DebugContext(r.Context(), "no route matched",
			"reason", res.Reason.String(),
			"method", r.Method,
			"path", r.URL.Path,
		)
		return next.Handle(r)
	}
}

// Params returns the parameters of the route matched for r.
func Params(r *http.Request) map[string]string {
	params, _ := router.Attribute(r, middleware.RouteParamsAttribute).(map[string]string)
	return params
}

// Param returns a single parameter of the route matched for r.
func Param(r *http.Request, name string) string {
	return Params(r)[name]
}

// RouteName returns the name of the route matched for r.
func RouteName(r *http.Request) string {
	name, _ := router.Attribute(r, middleware.RouteNameAttribute).(string)
	return name
}
