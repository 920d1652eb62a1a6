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

package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/web/config"
	"rivaas.dev/web/config/codec"
)

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	assert.Equal(t, "rivaas-service", s.Service.Name)
	assert.Equal(t, "development", s.Service.Environment)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "all", s.Log.AccessLog)
	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, 15*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, s.Server.ShutdownTimeout)
	assert.Equal(t, "X-Request-ID", s.RequestID.Header)
	assert.Equal(t, "/metrics", s.Metrics.Path)
	assert.Equal(t, "none", s.Tracing.Exporter)
	assert.InDelta(t, 1.0, s.Tracing.SampleRate, 0)
	assert.False(t, s.Server.H2C)
	require.NoError(t, s.Validate())
}

func TestLoadSettings_Sources(t *testing.T) {
	yaml := []byte(`
service:
  name: books
  version: v2.3.0
log:
  format: text
  level: warn
server:
  addr: 127.0.0.1:9000
  h2c: true
  shutdowntimeout: 3s
metrics:
  enabled: true
  namespace: library
http:
  compress: true
  corsorigins:
    - https://a.example
    - https://b.example
  trustedproxies:
    - 10.0.0.0/8
`)
	toml := []byte("[errors]\nbaseurl = \"https://errors.example.com\"\n")

	t.Setenv("RIVAAS_LOG_LEVEL", "debug")
	t.Setenv("RIVAAS_TRACING_ENABLED", "true")
	t.Setenv("RIVAAS_TRACING_SAMPLERATE", "0.25")
	t.Setenv("RIVAAS_SERVER_MAXBODY", "4096")

	s, err := LoadSettings(context.Background(),
		config.WithContent(yaml, codec.TypeYAML),
		config.WithContent(toml, codec.TypeTOML),
	)
	require.NoError(t, err)

	assert.Equal(t, "books", s.Service.Name)
	assert.Equal(t, "v2.3.0", s.Service.Version)
	assert.Equal(t, "text", s.Log.Format)
	assert.Equal(t, "debug", s.Log.Level, "environment wins over files")
	assert.Equal(t, "127.0.0.1:9000", s.Server.Addr)
	assert.True(t, s.Server.H2C)
	assert.Equal(t, 3*time.Second, s.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, s.Server.WriteTimeout)
	assert.True(t, s.Metrics.Enabled)
	assert.Equal(t, "library", s.Metrics.Namespace)
	assert.Equal(t, "https://errors.example.com", s.Errors.BaseURL)
	assert.True(t, s.Tracing.Enabled)
	assert.InDelta(t, 0.25, s.Tracing.SampleRate, 1e-9)
	assert.Equal(t, int64(4096), s.Server.MaxBody)
	assert.True(t, s.HTTP.Compress)
	assert.Equal(t, 1024, s.HTTP.CompressMin)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.HTTP.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, s.HTTP.TrustedProxies)
	assert.Equal(t, 1, s.HTTP.ProxyMaxHops)
}

func TestLoadSettings_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"log format", "log:\n  format: xml\n"},
		{"log level", "log:\n  level: loud\n"},
		{"access log", "log:\n  accesslog: some\n"},
		{"exporter", "tracing:\n  exporter: jaeger\n"},
		{"sample rate", "tracing:\n  samplerate: 3\n"},
		{"metrics path", "metrics:\n  enabled: true\n  path: metrics\n"},
		{"duration", "server:\n  readtimeout: soon\n"},
		{"max body", "server:\n  maxbody: -1\n"},
		{"proxy hops", "http:\n  proxymaxhops: -1\n"},
		{"trusted proxy", "http:\n  trustedproxies:\n    - 10.0.0.0/33\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := bindSettings(context.Background(), config.WithContent([]byte(tt.content), codec.TypeYAML))
			require.Error(t, err)
		})
	}
}
