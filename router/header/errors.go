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

package header

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSyntax indicates a header value that does not follow the parameter grammar.
	ErrSyntax = errors.New("invalid header syntax")

	// ErrInvalidQuality indicates a quality factor outside 0..1 or with more than three decimals.
	ErrInvalidQuality = errors.New("invalid quality factor")
)

// SyntaxError describes which part of a header value failed to parse.
type SyntaxError struct {
	// Input is the unparsed remainder at the point of failure.
	Input string
	Err   error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("header: %v: %q", e.Err, e.Input)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// HTTPStatus reports 400 Bad Request.
func (e *SyntaxError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns a machine readable error code.
func (e *SyntaxError) Code() string {
	if errors.Is(e.Err, ErrInvalidQuality) {
		return "invalid_quality"
	}
	return "invalid_header"
}
