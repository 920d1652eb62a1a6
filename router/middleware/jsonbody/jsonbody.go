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

// Package jsonbody decodes JSON request bodies.
//
// For requests with a JSON content type the body is decoded and stored in
// the "parsedBody" request attribute: objects become map[string]any, arrays
// become []any, and scalar documents yield a nil parsed body. The raw body
// stays readable for downstream handlers.
//
// With WithSchema, well-formed documents are also checked against a compiled
// JSON Schema and rejected with a *validation.Error (422) when they do not
// conform.
package jsonbody

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
	"rivaas.dev/web/validation"
)

// DefaultMaxBytes is the default body size limit.
const DefaultMaxBytes int64 = 1 << 20

// ErrBodyTooLarge indicates a body above the configured limit.
var ErrBodyTooLarge = errors.New("jsonbody: request body too large")

// ParseError reports a body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonbody: invalid JSON body: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// HTTPStatus reports 400 Bad Request.
func (e *ParseError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns a machine readable error code.
func (e *ParseError) Code() string {
	return "invalid_json"
}

type tooLargeError struct {
	limit int64
}

func (e *tooLargeError) Error() string {
	return fmt.Sprintf("%v: limit is %d bytes", ErrBodyTooLarge, e.limit)
}

func (e *tooLargeError) Unwrap() error {
	return ErrBodyTooLarge
}

func (e *tooLargeError) HTTPStatus() int {
	return http.StatusRequestEntityTooLarge
}

// Option configures the parser.
type Option func(*Parser)

// WithIgnoreErrors makes malformed bodies produce a nil parsed body instead
// of an error.
func WithIgnoreErrors(ignore bool) Option {
	return func(p *Parser) {
		p.ignoreErrors = ignore
	}
}

// WithMaxBytes limits the body size. Zero or less disables the limit.
func WithMaxBytes(n int64) Option {
	return func(p *Parser) {
		p.maxBytes = n
	}
}

// WithUseNumber decodes numbers as json.Number instead of float64.
func WithUseNumber(use bool) Option {
	return func(p *Parser) {
		p.useNumber = use
	}
}

// WithSchema validates every non-empty JSON body against schema.
func WithSchema(schema *validation.Schema) Option {
	return func(p *Parser) {
		p.schema = schema
	}
}

// Parser is the JSON body middleware.
type Parser struct {
	ignoreErrors bool
	useNumber    bool
	maxBytes     int64
	schema       *validation.Schema
}

// New creates a JSON body parser.
//
// Example:
//
//	d := router.MustNewDispatcher([]router.Middleware{
//	    jsonbody.New(jsonbody.WithMaxBytes(64 << 10)),
//	    routing.New(routes),
//	})
func New(opts ...Option) *Parser {
	p := &Parser{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process implements router.Middleware.
func (p *Parser) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	if r.Body == nil || r.Body == http.NoBody || !isJSON(r.Header.Get("Content-Type")) {
		return next.Handle(r)
	}

	raw, err := p.read(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	parsed, err := p.decode(raw)
	if err != nil {
		if !p.ignoreErrors {
			return nil, &ParseError{Err: err}
		}
		parsed = nil
	} else if p.schema != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := p.schema.ValidateJSON(raw); err != nil {
			return nil, err
		}
	}
	return next.Handle(router.WithAttribute(r, middleware.ParsedBodyAttribute, parsed))
}

func (p *Parser) read(body io.ReadCloser) ([]byte, error) {
	defer body.Close()
	if p.maxBytes <= 0 {
		return io.ReadAll(body)
	}
	raw, err := io.ReadAll(io.LimitReader(body, p.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > p.maxBytes {
		return nil, &tooLargeError{limit: p.maxBytes}
	}
	return raw, nil
}

func (p *Parser) decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil //nolint:nilnil // empty body has no document
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if p.useNumber {
		dec.UseNumber()
	}
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after top-level value")
	}

	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	default:
		return nil, nil //nolint:nilnil // scalars carry no parsed body
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Body returns the parsed body stored for r, or nil.
func Body(r *http.Request) any {
	return router.Attribute(r, middleware.ParsedBodyAttribute)
}
