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

package route

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidPattern indicates a route template that cannot be compiled.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrDuplicateName indicates two routes registered under the same name.
	ErrDuplicateName = errors.New("duplicate route name")

	// ErrNilRoute indicates a nil route passed to a group.
	ErrNilRoute = errors.New("route must not be nil")

	// ErrRouteNotFound indicates that no route carries the requested name.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMissingParameter indicates that a placeholder has no value.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrParameterMismatch indicates a parameter value rejected by its constraint.
	ErrParameterMismatch = errors.New("parameter does not match constraint")

	// ErrNoMatch is wrapped by [NoMatchError].
	ErrNoMatch = errors.New("no route matched")

	// ErrNoHandler is wrapped by [NoHandlerError].
	ErrNoHandler = errors.New("route has no handler")
)

// PatternError reports a template that failed to compile.
type PatternError struct {
	Template string
	Reason   string
	Err      error
}

func (e *PatternError) Error() string {
	msg := fmt.Sprintf("route: invalid pattern %q: %s", e.Template, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidPattern and, when present, the underlying cause.
func (e *PatternError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidPattern}
	}
	return []error{ErrInvalidPattern, e.Err}
}

// NoMatchError is the error form of a [NoMatch] result.
type NoMatchError struct {
	Reason Reason
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("route: no route matched (%s)", e.Reason)
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// HTTPStatus reports 404 Not Found.
func (e *NoMatchError) HTTPStatus() int {
	return http.StatusNotFound
}

// NoHandlerError is the error form of a [NoHandler] result.
type NoHandlerError struct {
	Route *Route
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("route: %s matched but has no handler", e.Route)
}

func (e *NoHandlerError) Unwrap() error {
	return ErrNoHandler
}

// HTTPStatus reports 500 Internal Server Error.
func (e *NoHandlerError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Code returns a machine readable error code.
func (e *NoHandlerError) Code() string {
	return "route_without_handler"
}
