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

//go:build !integration

package errors

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/web/router/header"
	"rivaas.dev/web/router/route"
)

type codedError struct {
	message string
	code    string
	status  int
	details any
}

func (e *codedError) Error() string { return e.message }
func (e *codedError) Code() string  { return e.code }
func (e *codedError) HTTPStatus() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}
func (e *codedError) Details() any { return e.details }

type fieldError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	_, syntaxErr := header.SortByQuality("text/html;q=2")
	require.Error(t, syntaxErr)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
		{name: "with status", err: WithStatus(nil, http.StatusNoContent), want: http.StatusNoContent},
		{name: "wrapped status", err: fmt.Errorf("ctx: %w", WithStatus(fmt.Errorf("x"), http.StatusConflict)), want: http.StatusConflict},
		{name: "deadline", err: fmt.Errorf("slow: %w", context.DeadlineExceeded), want: http.StatusGatewayTimeout},
		{name: "header syntax", err: syntaxErr, want: http.StatusBadRequest},
		{name: "route without handler", err: &route.NoHandlerError{Route: route.Get("/x")}, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestWithStatus(t *testing.T) {
	t.Parallel()

	inner := fmt.Errorf("missing")
	err := WithStatus(inner, http.StatusNotFound)
	assert.Equal(t, "missing", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, http.StatusText(http.StatusTeapot), WithStatus(nil, http.StatusTeapot).Error())
}

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *RFC9457
		err        error
		wantStatus int
		wantType   string
		wantID     string
	}{
		{
			name:       "plain error",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        fmt.Errorf("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
		},
		{
			name:       "code becomes type",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        &codedError{message: "bad input", code: "invalid_input", status: http.StatusBadRequest},
			wantStatus: http.StatusBadRequest,
			wantType:   "https://api.example.com/problems/invalid_input",
		},
		{
			name:       "no base URL",
			formatter:  NewRFC9457(""),
			err:        &codedError{message: "x", code: "test_code"},
			wantStatus: http.StatusInternalServerError,
			wantType:   "test_code",
		},
		{
			name: "resolvers",
			formatter: &RFC9457{
				TypeResolver:     func(error) string { return "urn:custom" },
				StatusResolver:   func(error) int { return http.StatusTeapot },
				ErrorIDGenerator: func() string { return "custom-id-123" },
			},
			err:        fmt.Errorf("test"),
			wantStatus: http.StatusTeapot,
			wantType:   "urn:custom",
			wantID:     "custom-id-123",
		},
		{
			name:       "disabled error ID",
			formatter:  &RFC9457{DisableErrorID: true},
			err:        fmt.Errorf("test"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/books/7", nil)
			response := tt.formatter.Format(req, tt.err)

			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", response.ContentType)

			body, ok := response.Body.(ProblemDetail)
			require.True(t, ok, "Body is %T", response.Body)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, http.StatusText(tt.wantStatus), body.Title)
			assert.Equal(t, tt.err.Error(), body.Detail)
			assert.Equal(t, "/books/7", body.Instance)

			switch {
			case tt.formatter.DisableErrorID:
				assert.NotContains(t, body.Extensions, "error_id")
			case tt.wantID != "":
				assert.Equal(t, tt.wantID, body.Extensions["error_id"])
			default:
				id, _ := body.Extensions["error_id"].(string)
				assert.True(t, strings.HasPrefix(id, "err-"), "error_id %q", id)
			}
		})
	}
}

func TestRFC9457_MarshalJSON(t *testing.T) {
	t.Parallel()

	p := ProblemDetail{
		Type:   "about:blank",
		Title:  "Bad Request",
		Status: 400,
		Extensions: map[string]any{
			"error_id": "err-123",
			"type":     "overwritten",
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "about:blank", result["type"])
	assert.Equal(t, "err-123", result["error_id"])
	assert.NotContains(t, result, "detail")
	assert.NotContains(t, result, "instance")
}

func TestRFC9457_Extensions(t *testing.T) {
	t.Parallel()

	err := &codedError{
		message: "validation failed",
		code:    "validation_error",
		status:  http.StatusUnprocessableEntity,
		details: []fieldError{{Path: "email", Code: "required", Message: "email is required"}},
	}
	response := NewRFC9457("").Format(httptest.NewRequest(http.MethodPost, "/users", nil), err)

	body := response.Body.(ProblemDetail)
	assert.Equal(t, "validation_error", body.Extensions["code"])
	assert.Equal(t, err.details, body.Extensions["errors"])
}

func TestJSONAPI_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *JSONAPI
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "plain", formatter: NewJSONAPI(), err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError},
		{name: "coded", formatter: NewJSONAPI(), err: &codedError{message: "nope", code: "denied", status: http.StatusForbidden}, wantStatus: http.StatusForbidden, wantCode: "denied"},
		{name: "resolver", formatter: &JSONAPI{StatusResolver: func(error) int { return http.StatusTeapot }}, err: fmt.Errorf("x"), wantStatus: http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			response := tt.formatter.Format(httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, response.Status)
			assert.Equal(t, "application/vnd.api+json; charset=utf-8", response.ContentType)

			body, ok := response.Body.(jsonAPIErrorResponse)
			require.True(t, ok, "Body is %T", response.Body)
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tt.err.Error(), body.Errors[0].Detail)
			assert.Equal(t, strconv.Itoa(tt.wantStatus), body.Errors[0].Status)
			assert.Equal(t, tt.wantCode, body.Errors[0].Code)
			assert.NotEmpty(t, body.Errors[0].ID)
		})
	}
}

func TestJSONAPI_FieldErrors(t *testing.T) {
	t.Parallel()

	err := &codedError{
		message: "validation failed",
		status:  http.StatusUnprocessableEntity,
		details: []fieldError{
			{Path: "email", Code: "required", Message: "email is required"},
			{Path: "items.0.price", Code: "min"},
		},
	}
	response := NewJSONAPI().Format(httptest.NewRequest(http.MethodPost, "/", nil), err)

	body := response.Body.(jsonAPIErrorResponse)
	require.Len(t, body.Errors, 2)

	require.NotNil(t, body.Errors[0].Source)
	assert.Equal(t, "/data/attributes/email", body.Errors[0].Source.Pointer)
	assert.Equal(t, "required", body.Errors[0].Code)
	assert.Equal(t, "email is required", body.Errors[0].Detail)

	require.NotNil(t, body.Errors[1].Source)
	assert.Equal(t, "/data/attributes/items/0/price", body.Errors[1].Source.Pointer)
	assert.Equal(t, "validation failed", body.Errors[1].Detail, "missing message falls back to the error")
	assert.NotEqual(t, body.Errors[0].ID, body.Errors[1].ID)
}

func TestJSONAPI_OpaqueDetails(t *testing.T) {
	t.Parallel()

	err := &codedError{message: "bad", details: map[string]any{"field": "error"}}
	body := NewJSONAPI().Format(httptest.NewRequest(http.MethodGet, "/", nil), err).Body.(jsonAPIErrorResponse)

	require.Len(t, body.Errors, 1)
	assert.Equal(t, map[string]any{"details": map[string]any{"field": "error"}}, body.Errors[0].Meta)
}

func TestConvertPathToPointer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "email", want: "/data/attributes/email"},
		{path: "user.name", want: "/data/attributes/user/name"},
		{path: "items.0.price", want: "/data/attributes/items/0/price"},
		{path: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, convertPathToPointer(tt.path), "path %q", tt.path)
	}
}

func TestSimple_Format(t *testing.T) {
	t.Parallel()

	err := &codedError{message: "bad request", code: "invalid_input", status: http.StatusBadRequest, details: []string{"a"}}
	response := NewSimple().Format(httptest.NewRequest(http.MethodGet, "/", nil), err)

	assert.Equal(t, http.StatusBadRequest, response.Status)
	assert.Equal(t, "application/json; charset=utf-8", response.ContentType)
	assert.Equal(t, map[string]any{
		"error":   "bad request",
		"code":    "invalid_input",
		"details": []string{"a"},
	}, response.Body)

	plain := NewSimple().Format(httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("boom"))
	assert.Equal(t, map[string]any{"error": "boom"}, plain.Body)
}
