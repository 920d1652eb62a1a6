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
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Tracer].
type Option func(*config)

// SpanStartHook runs right after a request span starts.
type SpanStartHook func(ctx context.Context, span trace.Span, r *http.Request)

// SpanFinishHook runs right before a request span ends.
type SpanFinishHook func(span trace.Span, status int)

type config struct {
	serviceName    string
	serviceVersion string
	sampleRate     float64
	provider       trace.TracerProvider
	propagator     propagation.TextMapPropagator
	stdout         io.Writer
	registerGlobal bool
	logger         *slog.Logger
	startHook      SpanStartHook
	finishHook     SpanFinishHook
}

func defaultConfig() *config {
	return &config{
		serviceName:    "rivaas-service",
		serviceVersion: "v1.0.0",
		sampleRate:     1.0,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(c *config) {
		c.serviceVersion = version
	}
}

// WithSampleRate samples the given fraction of new traces. Requests that
// arrive with a sampled parent are always traced. Ignored when the
// provider comes from WithTracerProvider.
func WithSampleRate(rate float64) Option {
	return func(c *config) {
		c.sampleRate = rate
	}
}

// WithTracerProvider uses a provider owned by the caller.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *config) {
		c.provider = provider
	}
}

// WithPropagator replaces the default W3C trace context and baggage
// propagator.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(c *config) {
		c.propagator = propagator
	}
}

// WithStdout exports finished spans to standard output.
func WithStdout() Option {
	return WithStdoutWriter(os.Stdout)
}

// WithStdoutWriter exports finished spans as JSON to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(c *config) {
		c.stdout = w
	}
}

// WithGlobalTracerProvider registers the provider and propagator as the
// OpenTelemetry globals.
func WithGlobalTracerProvider() Option {
	return func(c *config) {
		c.registerGlobal = true
	}
}

// WithLogger logs provider lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSpanStartHook sets a hook run for every request span after it starts.
func WithSpanStartHook(hook SpanStartHook) Option {
	return func(c *config) {
		c.startHook = hook
	}
}

// WithSpanFinishHook sets a hook run for every request span before it ends.
func WithSpanFinishHook(hook SpanFinishHook) Option {
	return func(c *config) {
		c.finishHook = hook
	}
}
