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

package accesslog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware/realip"
	"rivaas.dev/web/router/middleware/requestid"
)

// testHandler is a slog.Handler implementation for testing that captures log records.
type testHandler struct {
	mu      sync.Mutex
	records []testRecord
}

type testRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	h.records = append(h.records, testRecord{level: r.Level, msg: r.Message, attrs: attrs})
	return nil
}

func (h *testHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *testHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *testHandler) all() []testRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]testRecord(nil), h.records...)
}

func respond(status int, body string) router.Middleware {
	return router.Callback(func(_ *http.Request) (*router.Response, error) {
		resp := router.NewResponse(status)
		_, _ = resp.WriteString(body)
		return resp, nil
	})
}

func TestAccessLog_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		level  slog.Level
	}{
		{name: "ok", status: http.StatusOK, level: slog.LevelInfo},
		{name: "client error", status: http.StatusNotFound, level: slog.LevelWarn},
		{name: "server error", status: http.StatusBadGateway, level: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := &testHandler{}
			d := router.MustNewDispatcher([]router.Middleware{
				New(WithLogger(slog.New(h))),
				respond(tt.status, "hello"),
			})

			req := httptest.NewRequest(http.MethodPost, "/items?x=1", nil)
			req.RemoteAddr = "198.51.100.7:4000"
			_, err := d.Handle(req)
			require.NoError(t, err)

			records := h.all()
			require.Len(t, records, 1)
			rec := records[0]
			assert.Equal(t, "access", rec.msg)
			assert.Equal(t, tt.level, rec.level)
			assert.Equal(t, "POST", rec.attrs["method"])
			assert.Equal(t, "/items", rec.attrs["path"])
			assert.Equal(t, int64(tt.status), rec.attrs["status"])
			assert.Equal(t, int64(5), rec.attrs["bytes_sent"])
			assert.Equal(t, "198.51.100.7", rec.attrs["client_ip"])
		})
	}
}

func TestAccessLog_ResolvedClientIP(t *testing.T) {
	t.Parallel()

	h := &testHandler{}
	d := router.MustNewDispatcher([]router.Middleware{
		realip.MustNew(realip.WithProxies("10.0.0.0/8")),
		New(WithLogger(slog.New(h))),
		respond(http.StatusOK, "ok"),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	req.Header.Set("X-Forwarded-For", "203.0.113.50")
	_, err := d.Handle(req)
	require.NoError(t, err)

	records := h.all()
	require.Len(t, records, 1)
	assert.Equal(t, "203.0.113.50", records[0].attrs["client_ip"])
}

type statusErr struct{}

func (statusErr) Error() string   { return "teapot" }
func (statusErr) HTTPStatus() int { return http.StatusTeapot }

func TestAccessLog_Errors(t *testing.T) {
	t.Parallel()

	h := &testHandler{}
	fail := func(err error) router.Middleware {
		return router.Callback(func(_ *http.Request) (*router.Response, error) { return nil, err })
	}

	d := router.MustNewDispatcher([]router.Middleware{New(WithLogger(slog.New(h))), fail(statusErr{})})
	_, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(t, err)

	d = router.MustNewDispatcher([]router.Middleware{New(WithLogger(slog.New(h))), fail(errors.New("plain"))})
	_, err = d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(t, err)

	records := h.all()
	require.Len(t, records, 2)
	assert.Equal(t, int64(http.StatusTeapot), records[0].attrs["status"])
	assert.Equal(t, slog.LevelWarn, records[0].level)
	assert.Equal(t, "teapot", records[0].attrs["error"])
	assert.Equal(t, int64(http.StatusInternalServerError), records[1].attrs["status"])
	assert.Equal(t, slog.LevelError, records[1].level)
}

func TestAccessLog_Exclusions(t *testing.T) {
	t.Parallel()

	h := &testHandler{}
	d := router.MustNewDispatcher([]router.Middleware{
		New(WithLogger(slog.New(h)), WithExcludePaths("/healthz"), WithExcludePrefixes("/static/")),
		respond(http.StatusOK, ""),
	})

	for _, path := range []string{"/healthz", "/static/app.js", "/api"} {
		_, err := d.Handle(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
	}

	records := h.all()
	require.Len(t, records, 1)
	assert.Equal(t, "/api", records[0].attrs["path"])
}

func TestAccessLog_ErrorsOnly(t *testing.T) {
	t.Parallel()

	h := &testHandler{}
	ok := router.MustNewDispatcher([]router.Middleware{New(WithLogger(slog.New(h)), WithErrorsOnly()), respond(http.StatusOK, "")})
	bad := router.MustNewDispatcher([]router.Middleware{New(WithLogger(slog.New(h)), WithErrorsOnly()), respond(http.StatusBadRequest, "")})

	_, _ = ok.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	_, _ = bad.Handle(httptest.NewRequest(http.MethodGet, "/", nil))

	records := h.all()
	require.Len(t, records, 1)
	assert.Equal(t, int64(http.StatusBadRequest), records[0].attrs["status"])
}

func TestAccessLog_SlowRequests(t *testing.T) {
	t.Parallel()

	h := &testHandler{}
	slow := router.Callback(func(_ *http.Request) (*router.Response, error) {
		time.Sleep(5 * time.Millisecond)
		return router.NewResponse(http.StatusOK), nil
	})
	d := router.MustNewDispatcher([]router.Middleware{
		New(WithLogger(slog.New(h)), WithErrorsOnly(), WithSlowThreshold(time.Millisecond)),
		slow,
	})

	_, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	records := h.all()
	require.Len(t, records, 1)
	assert.Equal(t, slog.LevelWarn, records[0].level)
	assert.Equal(t, true, records[0].attrs["slow"])
}

func TestAccessLog_RequestIDAndSampling(t *testing.T) {
	t.Parallel()

	h := &testHandler{}
	d := router.MustNewDispatcher([]router.Middleware{
		requestid.New(),
		New(WithLogger(slog.New(h)), WithSampleRate(0)),
		respond(http.StatusOK, ""),
	})
	for range 10 {
		_, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
	}
	assert.Empty(t, h.all(), "rate 0 drops every successful request with an ID")

	d = router.MustNewDispatcher([]router.Middleware{
		requestid.New(requestid.WithGenerator(func() string { return "fixed-id" })),
		New(WithLogger(slog.New(h))),
		respond(http.StatusOK, ""),
	})
	_, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	records := h.all()
	require.Len(t, records, 1)
	assert.Equal(t, "fixed-id", records[0].attrs["request_id"])
}

func TestSampleByHash(t *testing.T) {
	t.Parallel()

	assert.True(t, sampleByHash("", 0))
	assert.False(t, sampleByHash("abc", 0))

	for _, id := range []string{"abc", "fixed-id", "01J9Z3", "ffffffff"} {
		assert.True(t, sampleByHash(id, 1), id)
		assert.True(t, sampleByHash(id, 1.5), id)
	}
	assert.Equal(t, sampleByHash("abc", 0.5), sampleByHash("abc", 0.5), "decision must be deterministic")
}

func TestAccessLog_NoLogger(t *testing.T) {
	t.Parallel()

	d := router.MustNewDispatcher([]router.Middleware{New(WithLogger(router.NoopLogger())), respond(http.StatusOK, "x")})
	resp, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "x", string(resp.Body()))
}
