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

package validation

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ErrValidation is matched by every [*Error].
var ErrValidation = errors.New("validation failed")

// ErrNilValue is returned when Validate is given nil.
var ErrNilValue = errors.New("validation: cannot validate nil value")

// FieldError describes one failing field.
type FieldError struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Error collects field errors.
type Error struct {
	Fields    []FieldError `json:"fields"`
	Truncated bool         `json:"truncated,omitempty"`
}

// Add appends a field error.
func (e *Error) Add(path, code, message string, meta map[string]any) {
	e.Fields = append(e.Fields, FieldError{Path: path, Code: code, Message: message, Meta: meta})
}

// Sort orders the fields by path, then code.
func (e *Error) Sort() {
	slices.SortStableFunc(e.Fields, func(a, b FieldError) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
}

// HasErrors reports whether any field failed.
func (e *Error) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Field returns the first error for path.
func (e *Error) Field(path string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Path == path {
			return f, true
		}
	}
	return FieldError{}, false
}

func (e *Error) Error() string {
	switch len(e.Fields) {
	case 0:
		return ErrValidation.Error()
	case 1:
		return fmt.Sprintf("%v: %v", ErrValidation, e.Fields[0])
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%v: %d errors: %s", ErrValidation, len(e.Fields), strings.Join(msgs, "; "))
}

// Unwrap returns ErrValidation.
func (e *Error) Unwrap() error {
	return ErrValidation
}

// HTTPStatus reports 422 Unprocessable Entity.
func (e *Error) HTTPStatus() int {
	return http.StatusUnprocessableEntity
}

// Code returns a machine readable error code.
func (e *Error) Code() string {
	return "validation_failed"
}

// Details returns the field errors for error responses.
func (e *Error) Details() any {
	return e.Fields
}
