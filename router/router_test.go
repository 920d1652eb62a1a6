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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_CopyOnWrite(t *testing.T) {
	t.Parallel()

	base := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, Attribute(base, "id"))
	assert.Empty(t, Attributes(base))

	withID := WithAttribute(base, "id", "42")
	withBoth := WithAttribute(withID, "name", "book")

	assert.Equal(t, "42", Attribute(withID, "id"))
	assert.Nil(t, Attribute(withID, "name"), "earlier request must not see later attributes")
	assert.Nil(t, Attribute(base, "id"), "original request must be untouched")
	assert.Equal(t, map[string]any{"id": "42", "name": "book"}, Attributes(withBoth))

	_, ok := LookupAttribute(withBoth, "missing")
	assert.False(t, ok)

	// Mutating the returned copy does not leak back.
	attrs := Attributes(withBoth)
	attrs["id"] = "changed"
	assert.Equal(t, "42", Attribute(withBoth, "id"))
}

func TestWithAttributes(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Same(t, r, WithAttributes(r, nil))

	r2 := WithAttributes(WithAttribute(r, "a", 1), map[string]any{"a": 2, "b": 3})
	assert.Equal(t, 2, Attribute(r2, "a"))
	assert.Equal(t, 3, Attribute(r2, "b"))
}

func TestResponse(t *testing.T) {
	t.Parallel()

	resp := NewResponse(http.StatusCreated).
		WithHeader("Content-Type", "text/plain").
		WithAddedHeader("Vary", "Accept").
		WithAddedHeader("Vary", "Origin")
	_, err := resp.WriteString("hello ")
	require.NoError(t, err)
	_, err = resp.Write([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 11, resp.BodyLen())

	clone := resp.Clone()
	clone.Header().Set("Content-Type", "application/json")
	clone.ResetBody()
	assert.Equal(t, "text/plain", resp.Header().Get("Content-Type"))
	assert.Equal(t, "hello world", string(resp.Body()))

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Emit(rec))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, []string{"Accept", "Origin"}, rec.Header().Values("Vary"))
}

func TestResponse_ZeroStatusEmitsOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, (&Response{}).Emit(rec))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPHandler(t *testing.T) {
	t.Parallel()

	ok := HandlerFunc(func(_ *http.Request) (*Response, error) {
		resp := NewResponse(http.StatusOK)
		_, _ = resp.WriteString("ok")
		return resp, nil
	})
	rec := httptest.NewRecorder()
	HTTPHandler(ok, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	failing := HandlerFunc(func(_ *http.Request) (*Response, error) {
		return nil, errors.New("broken")
	})
	rec = httptest.NewRecorder()
	HTTPHandler(failing, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var seen error
	rec = httptest.NewRecorder()
	HTTPHandler(failing, func(w http.ResponseWriter, _ *http.Request, err error) {
		seen = err
		w.WriteHeader(http.StatusBadGateway)
	}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.EqualError(t, seen, "broken")
}
