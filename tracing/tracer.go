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
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	otelsemconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/web/router"
	"rivaas.dev/web/telemetry/semconv"
)

const instrumentationName = "rivaas.dev/web/tracing"

// Tracer starts and finishes spans. It is safe for concurrent use.
type Tracer struct {
	cfg        *config
	provider   trace.TracerProvider
	sdk        *sdktrace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// New creates a tracer. Unless WithTracerProvider is given it owns an SDK
// provider that Shutdown flushes and stops.
func New(opts ...Option) (*Tracer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sampleRate < 0 || cfg.sampleRate > 1 {
		return nil, fmt.Errorf("tracing: sample rate must be between 0 and 1, got %v", cfg.sampleRate)
	}
	if cfg.serviceName == "" {
		return nil, errors.New("tracing: service name cannot be empty")
	}
	if cfg.propagator == nil {
		return nil, errors.New("tracing: propagator cannot be nil")
	}
	if cfg.logger == nil {
		cfg.logger = router.NoopLogger()
	}

	t := &Tracer{cfg: cfg, propagator: cfg.propagator, provider: cfg.provider}
	if t.provider == nil {
		sdk, err := newSDKProvider(cfg)
		if err != nil {
			return nil, err
		}
		t.sdk = sdk
		t.provider = sdk
	}
	t.tracer = t.provider.Tracer(instrumentationName)

	if cfg.registerGlobal {
		otel.SetTracerProvider(t.provider)
		otel.SetTextMapPropagator(t.propagator)
	}
	cfg.logger.Debug("tracing initialized",
		"service", cfg.serviceName,
		"stdout", cfg.stdout != nil,
		"sample_rate", cfg.sampleRate,
	)
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func newSDKProvider(cfg *config) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			otelsemconv.SchemaURL,
			otelsemconv.ServiceName(cfg.serviceName),
			otelsemconv.ServiceVersion(cfg.serviceVersion),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRate))),
	}
	if cfg.stdout != nil {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.stdout))
		if err != nil {
			return nil, fmt.Errorf("tracing: create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	return t.cfg.serviceName
}

// Provider returns the tracer provider in use.
func (t *Tracer) Provider() trace.TracerProvider {
	return t.provider
}

// Shutdown flushes and stops the provider when the tracer owns it.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdk == nil {
		return nil
	}
	if err := t.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracing: shutdown: %w", err)
	}
	return nil
}

// StartSpan starts an internal span as a child of the span in ctx.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Extract returns ctx joined with the trace context carried by headers.
func (t *Tracer) Extract(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context of ctx into headers, for outgoing calls.
func (t *Tracer) Inject(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// StartRequestSpan starts the server span of r, continuing any trace
// propagated by the caller.
func (t *Tracer) StartRequestSpan(r *http.Request) (context.Context, trace.Span) {
	ctx := t.Extract(r.Context(), r.Header)
	ctx, span := t.tracer.Start(ctx, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String(semconv.HTTPMethod, r.Method),
			attribute.String(semconv.HTTPTarget, r.URL.Path),
			attribute.String(semconv.HTTPHost, r.Host),
			attribute.String(semconv.HTTPUserAgent, r.UserAgent()),
			attribute.String(semconv.NetworkPeerAddr, r.RemoteAddr),
		),
	)
	if t.cfg.startHook != nil && span.IsRecording() {
		t.cfg.startHook(ctx, span, r)
	}
	return ctx, span
}

// FinishRequestSpan records the outcome on span and ends it.
func (t *Tracer) FinishRequestSpan(span trace.Span, status int, err error) {
	if !span.IsRecording() {
		span.End()
		return
	}
	span.SetAttributes(attribute.Int(semconv.HTTPStatusCode, status))
	if err != nil {
		span.RecordError(err)
	}
	if status >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if t.cfg.finishHook != nil {
		t.cfg.finishHook(span, status)
	}
	span.End()
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span ID of the span in ctx, or "".
func SpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}

// AddEvent adds an event to the span in ctx when it is recording.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// SetAttributes sets attributes on the span in ctx when it is recording.
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}
