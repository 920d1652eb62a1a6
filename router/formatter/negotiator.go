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

package formatter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/header"
)

// ErrNotAcceptable is wrapped by NotAcceptableError.
var ErrNotAcceptable = errors.New("no acceptable representation")

// NotAcceptableError reports that no formatter satisfies the Accept header.
type NotAcceptableError struct {
	Accept  string
	Offered []string
}

func (e *NotAcceptableError) Error() string {
	return fmt.Sprintf("formatter: %q accepts none of %s", e.Accept, strings.Join(e.Offered, ", "))
}

func (e *NotAcceptableError) Unwrap() error { return ErrNotAcceptable }

// HTTPStatus reports 406 Not Acceptable.
func (e *NotAcceptableError) HTTPStatus() int { return http.StatusNotAcceptable }

// Code returns a machine readable error code.
func (e *NotAcceptableError) Code() string { return "not_acceptable" }

// Negotiator is middleware that formats data responses returned by the
// rest of the chain.
type Negotiator struct {
	formatters []Formatter
	types      []string
	strict     bool
}

// New creates a negotiating middleware. Without formatters it offers JSON,
// XML and YAML, in that order.
func New(formatters ...Formatter) *Negotiator {
	if len(formatters) == 0 {
		formatters = []Formatter{NewJSON(), NewXML(), NewYAML()}
	}
	types := make([]string, len(formatters))
	for i, f := range formatters {
		types[i] = f.MediaType()
	}
	return &Negotiator{formatters: formatters, types: types}
}

// Strict returns a copy that fails with NotAcceptableError instead of
// falling back to the first formatter.
func (n *Negotiator) Strict() *Negotiator {
	c := *n
	c.strict = true
	return &c
}

// Select returns the formatter for r. A malformed Accept header yields a
// *header.SyntaxError.
func (n *Negotiator) Select(r *http.Request) (Formatter, error) {
	chosen, err := header.Accepts(r, n.types...)
	if err != nil {
		return nil, err
	}
	for i, t := range n.types {
		if t == chosen {
			return n.formatters[i], nil
		}
	}
	if n.strict {
		return nil, &NotAcceptableError{Accept: strings.Join(r.Header.Values("Accept"), ", "), Offered: n.types}
	}
	return n.formatters[0], nil
}

// Process implements router.Middleware. Responses with a body already
// written, or without Data, pass through unchanged.
func (n *Negotiator) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	resp, err := next.Handle(r)
	if err != nil || resp == nil || resp.Data == nil || resp.BodyLen() > 0 {
		return resp, err
	}

	f, err := n.Select(r)
	if err != nil {
		return nil, err
	}
	if err := f.Format(resp); err != nil {
		return nil, err
	}
	resp.Header().Add("Vary", "Accept")
	return resp, nil
}

// Using returns middleware that formats every data response with f.
func Using(f Formatter) router.Middleware {
	return router.MiddlewareFunc(func(r *http.Request, next router.Handler) (*router.Response, error) {
		resp, err := next.Handle(r)
		if err != nil || resp == nil || resp.Data == nil || resp.BodyLen() > 0 {
			return resp, err
		}
		if err := f.Format(resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
}
