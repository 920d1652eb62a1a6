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

package binding

import (
	"errors"
	"fmt"
	"net/http"
)

// Source identifies where a value was bound from.
type Source int

// Binding sources.
const (
	SourceBody Source = iota
	SourceQuery
	SourcePath
	SourceHeader
)

func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceQuery:
		return "query"
	case SourcePath:
		return "path"
	case SourceHeader:
		return "header"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

var (
	// ErrEmptyBody is reported when a body is required but missing.
	ErrEmptyBody = errors.New("binding: request body is empty")

	// ErrUnsupportedMediaType is matched by every [*UnsupportedMediaTypeError].
	ErrUnsupportedMediaType = errors.New("binding: unsupported media type")

	// ErrBodyTooLarge is matched by every [*TooLargeError].
	ErrBodyTooLarge = errors.New("binding: request body too large")

	// ErrNotProtoMessage is reported when a protobuf body is bound into a
	// value that is not a proto.Message.
	ErrNotProtoMessage = errors.New("binding: target is not a proto.Message")
)

// BindError reports data that could not be decoded.
type BindError struct {
	Source Source
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding %s: %v", e.Source, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// HTTPStatus reports 400 Bad Request.
func (e *BindError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns a machine readable error code.
func (e *BindError) Code() string {
	return "binding_error"
}

// UnsupportedMediaTypeError reports a body whose Content-Type has no decoder.
type UnsupportedMediaTypeError struct {
	MediaType string
}

func (e *UnsupportedMediaTypeError) Error() string {
	if e.MediaType == "" {
		return ErrUnsupportedMediaType.Error() + ": missing Content-Type"
	}
	return fmt.Sprintf("%v %q", ErrUnsupportedMediaType, e.MediaType)
}

// Is matches [ErrUnsupportedMediaType].
func (e *UnsupportedMediaTypeError) Is(target error) bool {
	return target == ErrUnsupportedMediaType
}

// HTTPStatus reports 415 Unsupported Media Type.
func (e *UnsupportedMediaTypeError) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// Code returns a machine readable error code.
func (e *UnsupportedMediaTypeError) Code() string {
	return "unsupported_media_type"
}

// TooLargeError reports a body above the WithMaxBytes limit.
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
