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
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
	"rivaas.dev/web/validation"
)

type book struct {
	Title string `json:"title" xml:"title" yaml:"title" toml:"title" msgpack:"title" validate:"required"`
	Year  int    `json:"year" xml:"year" yaml:"year" toml:"year" msgpack:"year"`
}

func post(contentType string, body []byte) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/books", bytes.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestBody_Codecs(t *testing.T) {
	t.Parallel()

	packed, err := msgpack.Marshal(book{Title: "Dune", Year: 1965})
	require.NoError(t, err)

	tests := []struct {
		contentType string
		body        []byte
	}{
		{contentType: "application/json", body: []byte(`{"title":"Dune","year":1965}`)},
		{contentType: "application/json; charset=utf-8", body: []byte(`{"title":"Dune","year":1965}`)},
		{contentType: "application/vnd.api+json", body: []byte(`{"title":"Dune","year":1965}`)},
		{contentType: "application/xml", body: []byte(`<book><title>Dune</title><year>1965</year></book>`)},
		{contentType: "application/yaml", body: []byte("title: Dune\nyear: 1965\n")},
		{contentType: "application/toml", body: []byte("title = \"Dune\"\nyear = 1965\n")},
		{contentType: "application/msgpack", body: packed},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			got, err := Body[book](post(tt.contentType, tt.body))
			require.NoError(t, err)
			assert.Equal(t, book{Title: "Dune", Year: 1965}, got)
		})
	}
}

func TestBody_Protobuf(t *testing.T) {
	t.Parallel()

	raw, err := proto.Marshal(wrapperspb.String("Dune"))
	require.NoError(t, err)

	got, err := Body[*wrapperspb.StringValue](post("application/x-protobuf", raw))
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.GetValue())

	var notProto book
	err = BodyTo(post("application/x-protobuf", raw), &notProto)
	require.ErrorIs(t, err, ErrNotProtoMessage)
}

func TestBody_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		opts        []Option
		wantStatus  int
	}{
		{name: "missing content type", body: `{}`, wantStatus: http.StatusUnsupportedMediaType},
		{name: "unknown content type", contentType: "text/csv", body: "a,b", wantStatus: http.StatusUnsupportedMediaType},
		{name: "empty body", contentType: "application/json", wantStatus: http.StatusBadRequest},
		{name: "malformed json", contentType: "application/json", body: `{"title":`, wantStatus: http.StatusBadRequest},
		{name: "trailing data", contentType: "application/json", body: `{"title":"a"} {}`, wantStatus: http.StatusBadRequest},
		{
			name: "unknown json field", contentType: "application/json", body: `{"title":"a","isbn":"x"}`,
			opts: []Option{WithDisallowUnknown()}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown toml key", contentType: "application/toml", body: "title = \"a\"\nisbn = \"x\"\n",
			opts: []Option{WithDisallowUnknown()}, wantStatus: http.StatusBadRequest,
		},
		{
			name: "too large", contentType: "application/json", body: `{"title":"a long title"}`,
			opts: []Option{WithMaxBytes(8)}, wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name: "invalid", contentType: "application/json", body: `{"year":1965}`,
			opts: []Option{WithValidator(validation.MustNew())}, wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Body[book](post(tt.contentType, []byte(tt.body)), tt.opts...)
			require.Error(t, err)

			var status interface{ HTTPStatus() int }
			require.ErrorAs(t, err, &status)
			assert.Equal(t, tt.wantStatus, status.HTTPStatus())
		})
	}
}

func TestBody_UnknownFieldsAllowedByDefault(t *testing.T) {
	t.Parallel()

	got, err := Body[book](post("application/json", []byte(`{"title":"Dune","isbn":"x"}`)))
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

type listBooks struct {
	Author string        `query:"author"`
	Tags   []string      `query:"tag"`
	Limit  int           `query:"limit"`
	Since  time.Time     `query:"since"`
	Wait   time.Duration `query:"wait"`
	Ignore string
}

func TestQuery(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/books?author=herbert&tag=sf&tag=classic&limit=25&since=2024-01-02T03:04:05Z&wait=2s&Ignore=x", nil)

	got, err := Query[listBooks](r)
	require.NoError(t, err)
	assert.Equal(t, "herbert", got.Author)
	assert.Equal(t, []string{"sf", "classic"}, got.Tags)
	assert.Equal(t, 25, got.Limit)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), got.Since.UTC())
	assert.Equal(t, 2*time.Second, got.Wait)
	assert.Empty(t, got.Ignore, "untagged fields are not bound")

	r = httptest.NewRequest(http.MethodGet, "/books?tag=sf,classic", nil)
	got, err = Query[listBooks](r)
	require.NoError(t, err)
	assert.Equal(t, []string{"sf", "classic"}, got.Tags)

	r = httptest.NewRequest(http.MethodGet, "/books?limit=many", nil)
	_, err = Query[listBooks](r)
	var berr *BindError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, SourceQuery, berr.Source)
	assert.Equal(t, http.StatusBadRequest, berr.HTTPStatus())
}

type updateBook struct {
	ID      int    `path:"id"`
	Version string `header:"If-Match"`
	Dry     bool   `query:"dry"`
	Title   string `json:"title" validate:"required"`
}

func TestRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPut, "/books/42?dry=true", strings.NewReader(`{"title":"Dune"}`))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("If-Match", `"v3"`)
	r = router.WithAttribute(r, middleware.RouteParamsAttribute, map[string]string{"id": "42"})

	got, err := Request[updateBook](r, WithValidator(validation.MustNew()))
	require.NoError(t, err)
	assert.Equal(t, updateBook{ID: 42, Version: `"v3"`, Dry: true, Title: "Dune"}, got)
}

func TestRequest_WithoutBodyStillValidates(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/books/42", nil)
	r = router.WithAttribute(r, middleware.RouteParamsAttribute, map[string]string{"id": "42"})

	got, err := Request[updateBook](r)
	require.NoError(t, err)
	assert.Equal(t, 42, got.ID)

	_, err = Request[updateBook](r, WithValidator(validation.MustNew()))
	require.ErrorIs(t, err, validation.ErrValidation)
}

func TestPathAndHeader(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/books/7", nil)
	r.Header.Set("if-match", "abc")
	r = router.WithAttribute(r, middleware.RouteParamsAttribute, map[string]string{"id": "7"})

	p, err := Path[updateBook](r)
	require.NoError(t, err)
	assert.Equal(t, 7, p.ID)

	h, err := Header[updateBook](r)
	require.NoError(t, err)
	assert.Equal(t, "abc", h.Version)

	r = router.WithAttribute(r, middleware.RouteParamsAttribute, map[string]string{"id": "seven"})
	_, err = Path[updateBook](r)
	var berr *BindError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, SourcePath, berr.Source)
}

func TestSource_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "body", SourceBody.String())
	assert.Equal(t, "header", SourceHeader.String())
	assert.Equal(t, "source(9)", Source(9).String())
}
