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

// Package recovery turns panics raised further down the chain into errors.
//
// A recovered panic is logged with a bounded stack trace, marked on the
// active OpenTelemetry span, and returned as a *PanicError that reports
// 500 Internal Server Error. A custom handler can produce a response
// instead.
//
//	d := router.MustNewDispatcher([]router.Middleware{
//	    recovery.New(recovery.WithLogger(logger)),
//	    routing.New(routes),
//	})
//
// Panics with http.ErrAbortHandler are re-raised so net/http can abort the
// connection as intended.
package recovery

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/web/router"
)

// ErrPanic is wrapped by every [PanicError].
var ErrPanic = errors.New("panic recovered")

// PanicError carries a recovered panic value.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recovery: %v: %v", ErrPanic, e.Value)
}

// Unwrap returns ErrPanic and, if the panic value was an error, that error.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrPanic, err}
	}
	return []error{ErrPanic}
}

// HTTPStatus reports 500 Internal Server Error.
func (e *PanicError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Code returns a machine readable error code.
func (e *PanicError) Code() string {
	return "internal_error"
}

// Handler produces the outcome for a recovered panic.
type Handler func(r *http.Request, value any) (*router.Response, error)

// Middleware recovers panics.
type Middleware struct {
	cfg *config
}

// New creates recovery middleware.
func New(opts ...Option) *Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Middleware{cfg: cfg}
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (resp *router.Response, err error) {
	defer func() {
		value := recover()
		if value == nil {
			return
		}
		if value == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
			panic(value)
		}
		resp, err = m.recovered(r, value)
	}()
	return next.Handle(r)
}

func (m *Middleware) recovered(r *http.Request, value any) (*router.Response, error) {
	markSpan(r, value)

	var stack []byte
	if m.cfg.stackTrace {
		stack = debug.Stack()
		if m.cfg.stackSize > 0 && len(stack) > m.cfg.stackSize {
			stack = stack[:m.cfg.stackSize]
		}
	}

	if m.cfg.logger != nil {
		attrs := []any{
			"panic", fmt.Sprint(value),
			"method", r.Method,
			"path", r.URL.Path,
		}
		if stack != nil {
			attrs = append(attrs, "stack", string(stack))
		}
		m.cfg.logger.ErrorContext(r.Context(), "panic recovered", attrs...)
	}

	if m.cfg.handler != nil {
		return m.cfg.handler(r, value)
	}
	return nil, &PanicError{Value: value, Stack: stack}
}

func markSpan(r *http.Request, value any) {
	span := trace.SpanFromContext(r.Context())
	if !span.SpanContext().IsValid() {
		return
	}
	span.SetStatus(codes.Error, "panic recovered")
	span.SetAttributes(
		attribute.Bool("exception.escaped", true),
		attribute.String("exception.type", fmt.Sprintf("%T", value)),
		attribute.String("exception.message", fmt.Sprint(value)),
	)
	if err, ok := value.(error); ok {
		span.RecordError(err)
	}
}
