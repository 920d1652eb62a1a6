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

package app

import (
	"log/slog"

	weberrors "rivaas.dev/web/errors"
	"rivaas.dev/web/metrics"
	"rivaas.dev/web/router"
	"rivaas.dev/web/router/route"
	"rivaas.dev/web/tracing"
)

// Option configures an App.
type Option func(*appConfig)

type appConfig struct {
	middlewares []router.Middleware
	routes      []*route.Group
	fallback    router.Handler
	logger      *slog.Logger
	formatter   weberrors.Formatter
	listeners   []Listener
	settings    *Settings
	h2c         *bool
	recorder    *metrics.Recorder
	tracer      *tracing.Tracer
}

// WithMiddleware appends middlewares to the chain. They run after the
// standard stack installed by WithSettings and before routing.
func WithMiddleware(middlewares ...router.Middleware) Option {
	return func(c *appConfig) {
		c.middlewares = append(c.middlewares, middlewares...)
	}
}

// WithRoutes adds a routing middleware for group at the end of the chain.
// Several groups are tried in the order given.
func WithRoutes(group *route.Group) Option {
	return func(c *appConfig) {
		c.routes = append(c.routes, group)
	}
}

// WithFallback sets the handler for requests no middleware answered.
// Defaults to a 404 response.
func WithFallback(h router.Handler) Option {
	return func(c *appConfig) {
		c.fallback = h
	}
}

// WithLogger sets the logger used by the App and its standard middleware.
// It takes precedence over the logger WithSettings would build.
func WithLogger(logger *slog.Logger) Option {
	return func(c *appConfig) {
		c.logger = logger
	}
}

// WithErrorFormatter sets how returned errors are rendered. Defaults to
// errors.DefaultNegotiated.
func WithErrorFormatter(f weberrors.Formatter) Option {
	return func(c *appConfig) {
		c.formatter = f
	}
}

// WithListener registers an event listener.
func WithListener(l Listener) Option {
	return func(c *appConfig) {
		c.listeners = append(c.listeners, l)
	}
}

// WithSettings configures the App from s and installs the standard
// middleware stack.
func WithSettings(s Settings) Option {
	return func(c *appConfig) {
		c.settings = &s
	}
}

// WithH2C serves HTTP/2 without TLS from Run and Serve. It overrides
// server.h2c from the settings.
func WithH2C(enabled bool) Option {
	return func(c *appConfig) {
		c.h2c = &enabled
	}
}

// WithMetrics uses recorder instead of the one WithSettings would create
// when metrics are enabled.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(c *appConfig) {
		c.recorder = recorder
	}
}

// WithTracer uses tracer instead of the one WithSettings would create when
// tracing is enabled. The App does not shut it down.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(c *appConfig) {
		c.tracer = tracer
	}
}
