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

// Package bodylimit rejects request bodies above a size limit.
//
// Requests announcing a larger Content-Length fail before the handler runs.
// Other bodies are wrapped so that reading past the limit returns a
// [*TooLargeError]; handlers that propagate the read error get a
// 413 Payload Too Large response from the error formatter.
//
// Example:
//
//	bodylimit.New(bodylimit.WithMaxSize(10 << 20))
package bodylimit

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"rivaas.dev/web/router"
)

// DefaultMaxSize is the default body limit (2 MiB).
const DefaultMaxSize int64 = 2 << 20

// ErrBodyTooLarge is matched by every [*TooLargeError].
var ErrBodyTooLarge = errors.New("request body too large")

// TooLargeError reports a body above the limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%v: limit is %d bytes", ErrBodyTooLarge, e.Limit)
}

// Is matches [ErrBodyTooLarge].
func (e *TooLargeError) Is(target error) bool {
	return target == ErrBodyTooLarge
}

// HTTPStatus reports 413 Payload Too Large.
func (e *TooLargeError) HTTPStatus() int {
	return http.StatusRequestEntityTooLarge
}

// Code returns a machine readable error code.
func (e *TooLargeError) Code() string {
	return "body_too_large"
}

// Option defines functional options for the body limit middleware.
type Option func(*config)

type config struct {
	maxSize   int64
	skipPaths map[string]bool
}

// WithMaxSize sets the limit in bytes. Values below one are ignored.
func WithMaxSize(n int64) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxSize = n
		}
	}
}

// WithSkipPaths disables the limit for exact request paths, such as upload
// endpoints with their own checks.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// Middleware enforces the limit.
type Middleware struct {
	cfg *config
}

// New returns a body limit middleware.
func New(opts ...Option) *Middleware {
	cfg := &config{
		maxSize:   DefaultMaxSize,
		skipPaths: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Middleware{cfg: cfg}
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	if r.Body == nil || r.Body == http.NoBody || m.cfg.skipPaths[r.URL.Path] {
		return next.Handle(r)
	}
	if r.ContentLength > m.cfg.maxSize {
		return nil, &TooLargeError{Limit: m.cfg.maxSize}
	}

	r2 := r.Clone(r.Context())
	r2.Body = &limitedBody{rc: r.Body, remaining: m.cfg.maxSize, limit: m.cfg.maxSize}
	return next.Handle(r2)
}

type limitedBody struct {
	rc        io.ReadCloser
	remaining int64
	limit     int64
	err       error
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	// Read one byte past the limit to tell "exactly at" from "over".
	if int64(len(p))-1 > b.remaining {
		p = p[:b.remaining+1]
	}
	n, err := b.rc.Read(p)
	if int64(n) <= b.remaining {
		b.remaining -= int64(n)
		b.err = err
		return n, err
	}
	n = int(b.remaining)
	b.remaining = 0
	b.err = &TooLargeError{Limit: b.limit}
	return n, b.err
}

func (b *limitedBody) Close() error {
	return b.rc.Close()
}
