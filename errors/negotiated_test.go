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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/web/router"
)

func TestNegotiated_Select(t *testing.T) {
	t.Parallel()

	n := DefaultNegotiated("https://example.com/problems")

	tests := []struct {
		name   string
		accept []string
		want   string
	}{
		{name: "no header", want: "application/problem+json; charset=utf-8"},
		{name: "any", accept: []string{"*/*"}, want: "application/problem+json; charset=utf-8"},
		{name: "plain json", accept: []string{"application/json"}, want: "application/json; charset=utf-8"},
		{name: "json api", accept: []string{"application/vnd.api+json"}, want: "application/vnd.api+json; charset=utf-8"},
		{name: "quality decides", accept: []string{"application/json;q=0.5, application/vnd.api+json"}, want: "application/vnd.api+json; charset=utf-8"},
		{name: "html falls back", accept: []string{"text/html"}, want: "application/problem+json; charset=utf-8"},
		{name: "malformed falls back", accept: []string{"application/json;q=abc"}, want: "application/problem+json; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, v := range tt.accept {
				req.Header.Add("Accept", v)
			}
			assert.Equal(t, tt.want, n.Format(req, fmt.Errorf("x")).ContentType)
		})
	}
}

func TestNegotiated_Empty(t *testing.T) {
	t.Parallel()

	response := NewNegotiated().Format(httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("x"))
	assert.Equal(t, "application/json; charset=utf-8", response.ContentType)
}

func TestRender(t *testing.T) {
	t.Parallel()

	f := FormatterFunc(func(_ *http.Request, err error) Response {
		return Response{
			Status:      http.StatusConflict,
			ContentType: "application/json",
			Body:        map[string]string{"error": err.Error()},
			Headers:     http.Header{"Retry-After": {"5"}},
		}
	})

	resp := Render(f, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("taken"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.Equal(t, "5", resp.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"taken"}`, string(resp.Body()))
}

func TestRender_Unencodable(t *testing.T) {
	t.Parallel()

	f := FormatterFunc(func(*http.Request, error) Response {
		return Response{Status: http.StatusBadRequest, ContentType: "application/json", Body: make(chan int)}
	})

	resp := Render(f, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("x"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header().Get("Content-Type"))
}

func TestHandler_WithDispatcher(t *testing.T) {
	t.Parallel()

	failing := router.Callback(func(*http.Request) (*router.Response, error) {
		return nil, WithStatus(fmt.Errorf("gone"), http.StatusGone)
	})
	d := router.MustNewDispatcher([]router.Middleware{failing})
	h := router.HTTPHandler(d, Handler(NewRFC9457("")))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/items/1", nil))

	require.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "gone", body["detail"])
	assert.Equal(t, "/items/1", body["instance"])
	assert.InDelta(t, float64(http.StatusGone), body["status"], 0)
}
