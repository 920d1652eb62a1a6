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
	"bytes"
	"net/http"
)

// Response is a buffered HTTP response produced by handlers and middleware.
// Middleware may inspect and modify it on the way out of the chain; nothing
// reaches the client until [Response.Emit] is called.
//
// Data carries a payload that still needs serialization. It is left for a
// formatter further out in the chain (see package formatter) and ignored by
// Emit.
type Response struct {
	StatusCode int
	Data       any

	header http.Header
	body   bytes.Buffer
}

// NewResponse creates an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{
		StatusCode: status,
		header:     make(http.Header),
	}
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// WithHeader sets a header value and returns the response for chaining.
func (r *Response) WithHeader(key, value string) *Response {
	r.Header().Set(key, value)
	return r
}

// WithAddedHeader appends a header value and returns the response for chaining.
func (r *Response) WithAddedHeader(key, value string) *Response {
	r.Header().Add(key, value)
	return r
}

// Write appends p to the response body.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteString appends s to the response body.
func (r *Response) WriteString(s string) (int, error) {
	return r.body.WriteString(s)
}

// Body returns the buffered response body.
// The slice is only valid until the next write.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// BodyLen returns the number of buffered body bytes.
func (r *Response) BodyLen() int {
	return r.body.Len()
}

// ResetBody discards the buffered body.
func (r *Response) ResetBody() {
	r.body.Reset()
}

// Clone returns a deep copy of the response.
func (r *Response) Clone() *Response {
	c := &Response{
		StatusCode: r.StatusCode,
		Data:       r.Data,
		header:     r.Header().Clone(),
	}
	c.body.Write(r.body.Bytes())
	return c
}

// Emit writes the status line, headers and body to w.
func (r *Response) Emit(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = append(dst[k][:0:0], v...)
	}

	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if r.body.Len() == 0 {
		return nil
	}
	_, err := w.Write(r.body.Bytes())
	return err
}

// ResponseFactory creates responses.
// Middleware that answer requests themselves take a factory so that
// applications control how responses are built.
type ResponseFactory interface {
	CreateResponse(status int) *Response
}

// ResponseFactoryFunc adapts a function to the [ResponseFactory] interface.
type ResponseFactoryFunc func(status int) *Response

// CreateResponse calls f(status).
func (f ResponseFactoryFunc) CreateResponse(status int) *Response {
	return f(status)
}

// DefaultResponseFactory creates empty responses via [NewResponse].
var DefaultResponseFactory ResponseFactory = ResponseFactoryFunc(NewResponse)
