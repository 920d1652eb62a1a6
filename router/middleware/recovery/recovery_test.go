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

package recovery

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/web/router"
)

func panicking(value any) router.Middleware {
	return router.Callback(func(_ *http.Request) (*router.Response, error) {
		panic(value)
	})
}

func TestRecovery_ReturnsPanicError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	d := router.MustNewDispatcher([]router.Middleware{New(WithLogger(logger)), panicking("boom")})
	resp, err := d.Handle(httptest.NewRequest(http.MethodGet, "/explode", nil))

	assert.Nil(t, resp)
	require.ErrorIs(t, err, ErrPanic)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.LessOrEqual(t, len(pe.Stack), 4<<10)
	assert.Equal(t, http.StatusInternalServerError, pe.HTTPStatus())

	assert.Contains(t, buf.String(), `"msg":"panic recovered"`)
	assert.Contains(t, buf.String(), `"path":"/explode"`)
}

func TestRecovery_ErrorValueUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("db down")
	d := router.MustNewDispatcher([]router.Middleware{New(WithoutLogging()), panicking(cause)})
	_, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, ErrPanic)
}

func TestRecovery_CustomHandler(t *testing.T) {
	t.Parallel()

	mw := New(WithoutLogging(), WithStackTrace(false), WithHandler(func(_ *http.Request, v any) (*router.Response, error) {
		resp := router.NewResponse(http.StatusServiceUnavailable)
		_, _ = resp.WriteString(v.(string))
		return resp, nil
	}))
	d := router.MustNewDispatcher([]router.Middleware{mw, panicking("later")})

	resp, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "later", string(resp.Body()))
}

func TestRecovery_NoPanicPassesThrough(t *testing.T) {
	t.Parallel()

	d := router.MustNewDispatcher([]router.Middleware{New(), router.Callback(func(_ *http.Request) (*router.Response, error) {
		return router.NewResponse(http.StatusOK), nil
	})})
	resp, err := d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecovery_AbortHandlerRepanics(t *testing.T) {
	t.Parallel()

	d := router.MustNewDispatcher([]router.Middleware{New(WithoutLogging()), panicking(http.ErrAbortHandler)})
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		_, _ = d.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRecovery_MarksSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx, span := tp.Tracer("test").Start(req.Context(), "request")
	req = req.WithContext(ctx)

	d := router.MustNewDispatcher([]router.Middleware{New(WithoutLogging()), panicking("traced")})
	_, err := d.Handle(req)
	require.Error(t, err)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "true", attrs["exception.escaped"])
	assert.Equal(t, "string", attrs["exception.type"])
	assert.Equal(t, "traced", attrs["exception.message"])
}
