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

// Package timeout bounds the time spent in the rest of the chain.
//
// The request context gets a deadline and the inner handlers run on their
// own goroutine. When the deadline passes first, the middleware returns a
// [*Error] (408 Request Timeout) without waiting for them. Handlers should
// watch r.Context().Done() and return early; their late results are dropped.
//
// Panics raised by inner handlers before the deadline are re-raised on the
// caller's goroutine, so an outer recovery middleware still sees them.
//
// Example:
//
//	timeout.New(
//	    timeout.WithDuration(5*time.Second),
//	    timeout.WithSkipPrefixes("/stream"),
//	)
package timeout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/web/router"
)

// DefaultDuration is the default time limit.
const DefaultDuration = 30 * time.Second

// ErrTimeout is matched by every [*Error].
var ErrTimeout = errors.New("request timeout")

// Error reports a request that ran out of time.
type Error struct {
	Timeout time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v after %s", ErrTimeout, e.Timeout)
}

// Is matches [ErrTimeout] and context.DeadlineExceeded.
func (e *Error) Is(target error) bool {
	return target == ErrTimeout || target == context.DeadlineExceeded
}

// HTTPStatus reports 408 Request Timeout.
func (e *Error) HTTPStatus() int {
	return http.StatusRequestTimeout
}

// Code returns a machine readable error code.
func (e *Error) Code() string {
	return "timeout"
}

// Option defines functional options for the timeout middleware.
type Option func(*config)

type config struct {
	duration     time.Duration
	logger       *slog.Logger
	skipPaths    map[string]bool
	skipPrefixes []string
	skipFunc     func(r *http.Request) bool
}

// WithDuration sets the time limit. Values below one nanosecond are ignored.
func WithDuration(d time.Duration) Option {
	return func(cfg *config) {
		if d > 0 {
			cfg.duration = d
		}
	}
}

// WithLogger sets the logger for timeout events.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSkipPaths exempts exact request paths.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// WithSkipPrefixes exempts request paths starting with any prefix.
func WithSkipPrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.skipPrefixes = append(cfg.skipPrefixes, prefixes...)
	}
}

// WithSkip exempts requests for which fn returns true.
func WithSkip(fn func(r *http.Request) bool) Option {
	return func(cfg *config) {
		cfg.skipFunc = fn
	}
}

// Middleware enforces the time limit.
type Middleware struct {
	cfg *config
}

// New returns a timeout middleware.
func New(opts ...Option) *Middleware {
	cfg := &config{
		duration:  DefaultDuration,
		logger:    router.NoopLogger(),
		skipPaths: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Middleware{cfg: cfg}
}

type result struct {
	resp  *router.Response
	err   error
	panic any
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	if m.skip(r) {
		return next.Handle(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), m.cfg.duration)
	defer cancel()
	r = r.WithContext(ctx)

	done := make(chan result, 1)
	go func() {
		var res result
		defer func() {
			if p := recover(); p != nil {
				res = result{panic: p}
			}
			done <- res
		}()
		res.resp, res.err = next.Handle(r)
	}()

	select {
	case res := <-done:
		if res.panic != nil {
			panic(res.panic)
		}
		return res.resp, res.err
	case <-ctx.Done():
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ctx.Err()
		}
		m.cfg.logger.WarnContext(ctx, "request timeout",
			"method", r.Method,
			"path", r.URL.Path,
			"timeout", m.cfg.duration.String(),
		)
		go m.drain(r, done)
		return nil, &Error{Timeout: m.cfg.duration}
	}
}

// drain waits for abandoned handlers so their panics are logged instead of
// lost.
func (m *Middleware) drain(r *http.Request, done <-chan result) {
	if res := <-done; res.panic != nil {
		m.cfg.logger.Error("panic after request timeout",
			"method", r.Method,
			"path", r.URL.Path,
			"panic", fmt.Sprint(res.panic),
		)
	}
}

func (m *Middleware) skip(r *http.Request) bool {
	path := r.URL.Path
	if m.cfg.skipPaths[path] {
		return true
	}
	for _, prefix := range m.cfg.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return m.cfg.skipFunc != nil && m.cfg.skipFunc(r)
}
