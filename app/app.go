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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync/atomic"

	weberrors "rivaas.dev/web/errors"
	"rivaas.dev/web/logging"
	"rivaas.dev/web/metrics"
	"rivaas.dev/web/router"
	"rivaas.dev/web/router/formatter"
	"rivaas.dev/web/router/middleware/accesslog"
	"rivaas.dev/web/router/middleware/bodylimit"
	"rivaas.dev/web/router/middleware/compression"
	"rivaas.dev/web/router/middleware/cors"
	"rivaas.dev/web/router/middleware/realip"
	"rivaas.dev/web/router/middleware/recovery"
	"rivaas.dev/web/router/middleware/requestid"
	"rivaas.dev/web/router/middleware/routing"
	"rivaas.dev/web/router/middleware/security"
	"rivaas.dev/web/router/middleware/timeout"
	"rivaas.dev/web/tracing"
)

// ErrNilRoutes is returned by New when WithRoutes was given a nil group.
var ErrNilRoutes = errors.New("app: route group cannot be nil")

// App is a web application: a middleware chain plus lifecycle, events and
// error rendering. It implements http.Handler.
type App struct {
	dispatcher *router.Dispatcher
	formatter  weberrors.Formatter
	logger     *slog.Logger
	listeners  []Listener
	settings   Settings
	h2c        bool

	recorder  *metrics.Recorder
	tracer    *tracing.Tracer
	ownTracer bool
	logging   *logging.Logger
	accessLog bool

	hooks   hooks
	started atomic.Bool
	stopped atomic.Bool
}

// New creates an App.
func New(opts ...Option) (*App, error) {
	cfg := &appConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	for _, g := range cfg.routes {
		if g == nil {
			return nil, ErrNilRoutes
		}
	}

	a := &App{
		formatter: cfg.formatter,
		logger:    cfg.logger,
		listeners: cfg.listeners,
		recorder:  cfg.recorder,
		tracer:    cfg.tracer,
	}

	var chain []router.Middleware
	if cfg.settings != nil {
		a.settings = *cfg.settings
		if err := a.settings.Validate(); err != nil {
			return nil, fmt.Errorf("app: invalid settings: %w", err)
		}
		stack, err := a.standardStack()
		if err != nil {
			_ = a.closeOwned(context.Background())
			return nil, err
		}
		chain = append(chain, stack...)
		a.h2c = a.settings.Server.H2C
	} else {
		a.settings = DefaultSettings()
	}

	if a.logger == nil {
		a.logger = router.NoopLogger()
	}
	if a.formatter == nil {
		a.formatter = weberrors.DefaultNegotiated(a.settings.Errors.BaseURL)
	}
	if cfg.h2c != nil {
		a.h2c = *cfg.h2c
	}

	chain = append(chain, cfg.middlewares...)
	for _, g := range cfg.routes {
		chain = append(chain, routing.New(g, routing.WithLogger(a.logger)))
	}

	var dopts []router.Option
	if cfg.fallback != nil {
		dopts = append(dopts, router.WithFallback(cfg.fallback))
	}
	d, err := router.NewDispatcher(chain, dopts...)
	if err != nil {
		_ = a.closeOwned(context.Background())
		return nil, fmt.Errorf("app: %w", err)
	}
	a.dispatcher = d
	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// standardStack builds the middleware WithSettings puts in front of the
// caller's middleware, creating the logger, recorder and tracer on the way.
func (a *App) standardStack() ([]router.Middleware, error) {
	s := a.settings

	if a.logger == nil {
		level, _ := logging.ParseLevel(s.Log.Level)
		l, err := logging.New(
			logging.WithHandlerType(logging.HandlerType(s.Log.Format)),
			logging.WithLevel(level),
			logging.WithServiceName(s.Service.Name),
			logging.WithServiceVersion(s.Service.Version),
			logging.WithEnvironment(s.Service.Environment),
			logging.WithTraceCorrelation(),
		)
		if err != nil {
			return nil, fmt.Errorf("app: logger: %w", err)
		}
		a.logging = l
		a.logger = l.Logger()
	}

	var stack []router.Middleware

	if s.Metrics.Enabled && a.recorder == nil {
		rec, err := metrics.New(
			metrics.WithNamespace(s.Metrics.Namespace),
			metrics.WithServiceName(s.Service.Name),
			metrics.WithLogger(a.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
		a.recorder = rec
	}
	if a.recorder != nil {
		path := s.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		stack = append(stack, metricsEndpoint(path, a.recorder))
	}

	if len(s.HTTP.TrustedProxies) > 0 {
		ropts := []realip.Option{
			realip.WithProxies(s.HTTP.TrustedProxies...),
			realip.WithMaxHops(s.HTTP.ProxyMaxHops),
			realip.WithLogger(a.logger),
		}
		if len(s.HTTP.ProxyHeaders) > 0 {
			ropts = append(ropts, realip.WithHeaders(s.HTTP.ProxyHeaders...))
		}
		resolver, err := realip.New(ropts...)
		if err != nil {
			return nil, fmt.Errorf("app: realip: %w", err)
		}
		stack = append(stack, resolver)
	}

	ridOpts := []requestid.Option{requestid.WithHeader(s.RequestID.Header)}
	if s.RequestID.ULID {
		ridOpts = append(ridOpts, requestid.WithULID())
	}
	stack = append(stack, requestid.New(ridOpts...))

	if s.Tracing.Enabled && a.tracer == nil {
		topts := []tracing.Option{
			tracing.WithServiceName(s.Service.Name),
			tracing.WithServiceVersion(s.Service.Version),
			tracing.WithSampleRate(s.Tracing.SampleRate),
			tracing.WithLogger(a.logger),
		}
		if s.Tracing.Exporter == "stdout" {
			topts = append(topts, tracing.WithStdout())
		}
		t, err := tracing.New(topts...)
		if err != nil {
			return nil, fmt.Errorf("app: tracing: %w", err)
		}
		a.tracer = t
		a.ownTracer = true
	}
	if a.tracer != nil {
		stack = append(stack, a.tracer.Middleware())
	}

	if a.recorder != nil {
		stack = append(stack, a.recorder.Middleware())
	}

	if s.Log.AccessLog != "off" {
		alOpts := []accesslog.Option{accesslog.WithLogger(a.logger)}
		if s.Log.AccessLog == "errors" {
			alOpts = append(alOpts, accesslog.WithErrorsOnly())
		}
		if s.Log.SlowThreshold > 0 {
			alOpts = append(alOpts, accesslog.WithSlowThreshold(s.Log.SlowThreshold))
		}
		stack = append(stack, accesslog.New(alOpts...))
		a.accessLog = true
	}

	stack = append(stack, recovery.New(recovery.WithLogger(a.logger)))

	if s.Server.HandlerTimeout > 0 {
		stack = append(stack, timeout.New(
			timeout.WithDuration(s.Server.HandlerTimeout),
			timeout.WithLogger(a.logger),
		))
	}
	if len(s.HTTP.CORSOrigins) > 0 {
		corsOpts := []cors.Option{cors.WithAllowCredentials(s.HTTP.CORSCredentials)}
		if slices.Contains(s.HTTP.CORSOrigins, "*") {
			corsOpts = append(corsOpts, cors.WithAllowAllOrigins(true))
		} else {
			corsOpts = append(corsOpts, cors.WithAllowedOrigins(s.HTTP.CORSOrigins...))
		}
		corsOpts = append(corsOpts, cors.WithExposedHeaders(s.RequestID.Header))
		stack = append(stack, cors.New(corsOpts...))
	}
	if s.HTTP.SecurityHeaders {
		stack = append(stack, security.New())
	}
	if s.HTTP.Compress {
		stack = append(stack, compression.New(
			compression.WithMinSize(s.HTTP.CompressMin),
			compression.WithLogger(a.logger),
		))
	}
	if s.Server.MaxBody > 0 {
		stack = append(stack, bodylimit.New(bodylimit.WithMaxSize(s.Server.MaxBody)))
	}

	// Data payloads are serialized here, so everything above sees final bodies.
	stack = append(stack, formatter.New())
	return stack, nil
}

// metricsEndpoint answers GET and HEAD requests for path with the
// recorder's exposition, ahead of every other middleware.
func metricsEndpoint(path string, rec *metrics.Recorder) router.Middleware {
	return router.MiddlewareFunc(func(r *http.Request, next router.Handler) (*router.Response, error) {
		if r.URL.Path == path && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			return rec.Handle(r)
		}
		return next.Handle(r)
	})
}

// Handle runs r through the middleware chain, firing BeforeRequest and
// AfterRequest around it.
func (a *App) Handle(r *http.Request) (*router.Response, error) {
	ctx := r.Context()
	a.fire(ctx, BeforeRequest{Request: r})
	resp, err := a.dispatcher.Handle(r)
	a.fire(ctx, AfterRequest{Request: r, Response: resp, Err: err})
	return resp, err
}

// ServeHTTP implements http.Handler. Errors returned by the chain are
// rendered by the error formatter.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, err := a.Handle(r)
	if err != nil {
		if !a.accessLog && weberrors.StatusOf(err) >= http.StatusInternalServerError {
			a.logger.ErrorContext(r.Context(), "request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
		}
		resp = weberrors.Render(a.formatter, r, err)
	}
	if emitErr := resp.Emit(w); emitErr != nil {
		a.logger.WarnContext(r.Context(), "failed to write response",
			"path", r.URL.Path,
			"error", emitErr,
		)
	}
	a.fire(r.Context(), AfterEmit{Request: r, Response: resp})
}

// Dispatcher returns the middleware chain.
func (a *App) Dispatcher() *router.Dispatcher {
	return a.dispatcher
}

// Logger returns the App's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Settings returns the settings the App was built from, or the defaults.
func (a *App) Settings() Settings {
	return a.settings
}

// Metrics returns the metrics recorder, or nil.
func (a *App) Metrics() *metrics.Recorder {
	return a.recorder
}

// Tracer returns the tracer, or nil.
func (a *App) Tracer() *tracing.Tracer {
	return a.tracer
}
