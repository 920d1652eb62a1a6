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

import "net/http"

// Handler produces a response for a request.
//
// Handlers used as a chain's terminal must always produce a response; errors
// are reserved for failures the caller has to translate (for example into a
// 4xx or 5xx answer).
type Handler interface {
	Handle(r *http.Request) (*Response, error)
}

// HandlerFunc adapts a function to the [Handler] interface.
type HandlerFunc func(r *http.Request) (*Response, error)

// Handle calls f(r).
func (f HandlerFunc) Handle(r *http.Request) (*Response, error) {
	return f(r)
}

// Middleware processes a request with access to the remainder of the chain.
// It either returns a response directly, short-circuiting the chain, or
// delegates by calling next.Handle and optionally post-processes the result.
type Middleware interface {
	Process(r *http.Request, next Handler) (*Response, error)
}

// MiddlewareFunc adapts a function to the [Middleware] interface.
type MiddlewareFunc func(r *http.Request, next Handler) (*Response, error)

// Process calls f(r, next).
func (f MiddlewareFunc) Process(r *http.Request, next Handler) (*Response, error) {
	return f(r, next)
}

// Callback wraps a plain handler function as middleware.
// The resulting middleware invokes h with the request and never delegates to
// the rest of the chain. A nil h yields a nil Middleware, which
// [NewDispatcher] and [Dispatcher.Add] reject.
func Callback(h HandlerFunc) Middleware {
	if h == nil {
		return nil
	}
	return callback{h: h}
}

type callback struct {
	h HandlerFunc
}

func (c callback) Process(r *http.Request, _ Handler) (*Response, error) {
	return c.h(r)
}

// NotFoundHandler answers every request with 404 Not Found.
type NotFoundHandler struct {
	factory ResponseFactory
}

// NewNotFoundHandler creates a NotFoundHandler using factory.
// A nil factory selects [DefaultResponseFactory].
func NewNotFoundHandler(factory ResponseFactory) *NotFoundHandler {
	if factory == nil {
		factory = DefaultResponseFactory
	}
	return &NotFoundHandler{factory: factory}
}

// Handle returns a 404 response whose body is the status text.
func (h *NotFoundHandler) Handle(_ *http.Request) (*Response, error) {
	resp := h.factory.CreateResponse(http.StatusNotFound)
	resp.WriteString(http.StatusText(http.StatusNotFound))
	return resp, nil
}
