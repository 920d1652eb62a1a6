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

package router

import (
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
)

// Dispatcher runs requests through an ordered middleware chain.
//
// Every call to [Dispatcher.Handle] walks the chain with its own position,
// so concurrent requests never observe each other's progress. When every
// middleware delegates, the fallback handler answers.
//
// Dispatcher itself implements [Handler], so dispatchers nest: a dispatcher
// may be wrapped with [Callback] and used as a middleware of another one.
type Dispatcher struct {
	// chain holds an immutable snapshot; Add publishes a new slice.
	chain    atomic.Pointer[[]Middleware]
	fallback Handler
	factory  ResponseFactory
}

// NewDispatcher creates a dispatcher for the given middleware in order.
// It returns [ErrNoMiddleware] for an empty list and [ErrNilMiddleware] when
// the list contains a nil entry.
//
// Example:
//
//	d, err := router.NewDispatcher([]router.Middleware{
//	    requestid.New(),
//	    routing.New(routes),
//	})
func NewDispatcher(middlewares []Middleware, opts ...Option) (*Dispatcher, error) {
	if len(middlewares) == 0 {
		return nil, ErrNoMiddleware
	}
	for i, m := range middlewares {
		if m == nil {
			return nil, fmt.Errorf("middleware %d: %w", i, ErrNilMiddleware)
		}
	}

	d := &Dispatcher{factory: DefaultResponseFactory}
	for _, opt := range opts {
		opt(d)
	}
	if d.fallback == nil {
		d.fallback = NewNotFoundHandler(d.factory)
	}

	chain := slices.Clone(middlewares)
	d.chain.Store(&chain)
	return d, nil
}

// MustNewDispatcher is like [NewDispatcher] but panics on error.
func MustNewDispatcher(middlewares []Middleware, opts ...Option) *Dispatcher {
	d, err := NewDispatcher(middlewares, opts...)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return d
}

// Add appends middleware to the end of the chain.
// Requests already in flight keep the chain they started with. Add is meant
// for configuration time; callers must not race it with serving traffic.
func (d *Dispatcher) Add(middlewares ...Middleware) error {
	for i, m := range middlewares {
		if m == nil {
			return fmt.Errorf("middleware %d: %w", i, ErrNilMiddleware)
		}
	}
	for {
		old := d.chain.Load()
		next := append(slices.Clone(*old), middlewares...)
		if d.chain.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

// Len returns the number of middleware in the chain.
func (d *Dispatcher) Len() int {
	return len(*d.chain.Load())
}

// Handle runs r through the chain and returns the resulting response.
// The first middleware receives r unchanged.
func (d *Dispatcher) Handle(r *http.Request) (*Response, error) {
	c := &continuation{chain: *d.chain.Load(), fallback: d.fallback}
	return c.Handle(r)
}

// continuation is the "rest of the chain" handed to a middleware.
// Each one is bound to a single request and a fixed position.
type continuation struct {
	chain    []Middleware
	fallback Handler
	pos      int
}

func (c *continuation) Handle(r *http.Request) (*Response, error) {
	if err := r.Context().Err(); err != nil {
		return nil, err
	}

	if c.pos >= len(c.chain) {
		return respond(c.fallback.Handle(r))
	}

	next := &continuation{chain: c.chain, fallback: c.fallback, pos: c.pos + 1}
	return respond(c.chain[c.pos].Process(r, next))
}

func respond(resp *Response, err error) (*Response, error) {
	if err != nil {
		return resp, err
	}
	if resp == nil {
		return nil, ErrNilResponse
	}
	return resp, nil
}
