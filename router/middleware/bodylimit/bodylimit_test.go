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

package bodylimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/web/router"
)

// echo reads the whole body and returns it.
var echo = router.HandlerFunc(func(r *http.Request) (*router.Response, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	resp := router.NewResponse(http.StatusOK)
	_, _ = resp.Write(b)
	return resp, nil
})

func TestProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		contentLength int64
		wantBody      string
		wantErr       bool
	}{
		{name: "under limit", body: "abc", contentLength: 3, wantBody: "abc"},
		{name: "at limit", body: "abcdefgh", contentLength: 8, wantBody: "abcdefgh"},
		{name: "declared too large", body: "abcdefghij", contentLength: 10, wantErr: true},
		{name: "chunked too large", body: "abcdefghij", contentLength: -1, wantErr: true},
		{name: "chunked at limit", body: "abcdefgh", contentLength: -1, wantBody: "abcdefgh"},
	}

	m := New(WithMaxSize(8))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(tt.body))
			r.ContentLength = tt.contentLength

			resp, err := m.Process(r, echo)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBodyTooLarge)
				var tooLarge *TooLargeError
				require.ErrorAs(t, err, &tooLarge)
				assert.Equal(t, int64(8), tooLarge.Limit)
				assert.Equal(t, http.StatusRequestEntityTooLarge, tooLarge.HTTPStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(resp.Body()))
		})
	}
}

func TestProcess_SkipPaths(t *testing.T) {
	t.Parallel()

	m := New(WithMaxSize(2), WithSkipPaths("/upload"))
	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("large body"))

	resp, err := m.Process(r, echo)
	require.NoError(t, err)
	assert.Equal(t, "large body", string(resp.Body()))
}

func TestNew_IgnoresInvalidSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultMaxSize, New(WithMaxSize(0)).cfg.maxSize)
	assert.Equal(t, DefaultMaxSize, New(WithMaxSize(-5)).cfg.maxSize)
}
