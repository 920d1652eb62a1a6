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

package logging

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var entries []map[string]any
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_JSONWithServiceAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(
		WithOutput(&buf),
		WithServiceName("books"),
		WithServiceVersion("1.2.3"),
		WithEnvironment("test"),
	)

	logger.Info("started", "port", 8080)
	logger.Debug("hidden")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "started", entries[0]["msg"])
	assert.Equal(t, "books", entries[0]["service"])
	assert.Equal(t, "1.2.3", entries[0]["version"])
	assert.Equal(t, "test", entries[0]["env"])
	assert.InDelta(t, 8080, entries[0]["port"], 0)

	assert.Equal(t, "books", logger.ServiceName())
	assert.Equal(t, "1.2.3", logger.ServiceVersion())
	assert.Equal(t, "test", logger.Environment())
}

func TestRedaction(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf))
	logger.Info("login", "password", "hunter2", "Authorization", "Bearer x", "user", "ann")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, redacted, entries[0]["password"])
	assert.Equal(t, redacted, entries[0]["Authorization"])
	assert.Equal(t, "ann", entries[0]["user"])

	buf.Reset()
	custom := MustNew(WithOutput(&buf), WithRedactKeys("User"))
	custom.Info("login", "password", "visible", "user", "ann")
	entries = decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible", entries[0]["password"])
	assert.Equal(t, redacted, entries[0]["user"])
}

func TestSetLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithTextHandler())
	derived := logger.With("component", "db")

	derived.Debug("before")
	require.NoError(t, logger.SetLevel(LevelDebug))
	assert.Equal(t, LevelDebug, logger.Level())
	derived.Debug("after")

	out := buf.String()
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "msg=after")
	assert.Contains(t, out, "component=db")
}

func TestCustomLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	logger := MustNew(WithCustomLogger(custom))
	assert.Same(t, custom, logger.Logger())
	assert.ErrorIs(t, logger.SetLevel(LevelDebug), ErrCannotChangeLevel)

	_, err := New(WithCustomLogger(nil))
	assert.ErrorIs(t, err, ErrNilLogger)
}

func TestInvalidConfiguration(t *testing.T) {
	t.Parallel()

	_, err := New(WithHandlerType("xml"))
	require.ErrorIs(t, err, ErrInvalidHandler)

	_, err = New(WithOutput(nil))
	require.Error(t, err)

	assert.Panics(t, func() { MustNew(WithHandlerType("xml")) })
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: " error ", want: LevelError},
		{in: "trace", want: LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrInvalidLevel, tt.in)
		} else {
			require.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestConsoleHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithConsoleHandler(), WithServiceName("books"))
	logger.Warn("slow query", "ms", 250, "token", "abc")

	line := buf.String()
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "slow query")
	assert.Contains(t, line, "service=books")
	assert.Contains(t, line, "ms=250")
	assert.Contains(t, line, "token="+redacted)
	assert.Contains(t, line, colorYellow)
}

func TestConsoleHandler_PlainInFiles(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "app.log"))
	require.NoError(t, err)
	defer f.Close()

	logger := MustNew(WithOutput(f), WithConsoleHandler())
	logger.Info("started")

	raw, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "INFO  started")
	assert.NotContains(t, string(raw), "\033[")
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf))
	require.NoError(t, logger.Shutdown(context.Background()))
	logger.Error("dropped")
	assert.Zero(t, buf.Len())
}

func TestTraceCorrelation(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	sc := span.SpanContext()

	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithTraceCorrelation())
	logger.Logger().InfoContext(ctx, "inside")
	logger.Logger().InfoContext(context.Background(), "outside")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, sc.TraceID().String(), entries[0][fieldTraceID])
	assert.Equal(t, sc.SpanID().String(), entries[0][fieldSpanID])
	assert.NotContains(t, entries[1], fieldTraceID)

	buf.Reset()
	cl := NewContextLogger(ctx, logger.Logger())
	assert.Equal(t, sc.TraceID().String(), cl.TraceID())
	cl.Info("once")
	entries = decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, sc.SpanID().String(), entries[0][fieldSpanID], "IDs are not duplicated")
}

func TestContextLogger_WithoutCorrelation(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	cl := NewContextLogger(ctx, MustNew(WithOutput(&buf)).Logger())
	cl.Warn("w")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, span.SpanContext().TraceID().String(), entries[0][fieldTraceID])

	plain := NewContextLogger(context.Background(), nil)
	assert.Empty(t, plain.TraceID())
	assert.Empty(t, plain.SpanID())
}
