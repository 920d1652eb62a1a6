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

// Package accesslog writes one structured log record per request.
//
// Records carry method, path, status, duration, body size, client address
// and the request ID when one is present. The client address is the
// "clientIP" attribute set by realip, or the peer address otherwise. Server errors log at error level,
// client errors and slow requests at warn, everything else at info.
// Successful fast requests can be sampled or dropped entirely:
//
//	accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/healthz"),
//	    accesslog.WithSampleRate(0.1),
//	    accesslog.WithSlowThreshold(500*time.Millisecond),
//	)
//
// Sampling hashes the request ID, so every service handling the same
// request makes the same decision.
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
	"rivaas.dev/web/telemetry/semconv"
)

// Middleware is the access log middleware.
type Middleware struct {
	cfg *config
}

// New creates access log middleware. Without WithLogger nothing is logged.
func New(opts ...Option) *Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Middleware{cfg: cfg}
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	if m.cfg.logger == nil || m.excluded(r.URL.Path) {
		return next.Handle(r)
	}

	start := time.Now()
	resp, err := next.Handle(r)
	duration := time.Since(start)

	status, size := middleware.Outcome(resp, err)
	isError := status >= 400
	isSlow := m.cfg.slowThreshold > 0 && duration >= m.cfg.slowThreshold

	if !isError && !isSlow {
		if m.cfg.logErrorsOnly {
			return resp, err
		}
		if m.cfg.sampleRate < 1.0 {
			requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)
			if !sampleByHash(requestID, m.cfg.sampleRate) {
				return resp, err
			}
		}
	}

	fields := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"bytes_sent", size,
		"user_agent", r.UserAgent(),
		"client_ip", clientIP(r),
		"host", r.Host,
		"proto", r.Proto,
	}
	if requestID, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		fields = append(fields, semconv.RequestID, requestID)
	}
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	if isSlow {
		fields = append(fields, "slow", true)
	}

	ctx := r.Context()
	switch {
	case status >= 500:
		m.cfg.logger.ErrorContext(ctx, "access", fields...)
	case status >= 400, isSlow:
		m.cfg.logger.WarnContext(ctx, "access", fields...)
	default:
		m.cfg.logger.InfoContext(ctx, "access", fields...)
	}
	return resp, err
}

func (m *Middleware) excluded(path string) bool {
	if m.cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range m.cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func clientIP(r *http.Request) string {
	if addr, ok := router.Attribute(r, middleware.ClientIPAttribute).(netip.Addr); ok && addr.IsValid() {
		return addr.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// sampleByHash decides deterministically from id. Requests without an ID
// are always logged.
func sampleByHash(id string, rate float64) bool {
	if id == "" || rate >= 1 {
		return true
	}
	if rate <= 0 {
		return false
	}
	h := sha256.Sum256([]byte(id))
	hashValue := binary.BigEndian.Uint64(h[:8])
	threshold := uint64(rate * float64(^uint64(0)))
	return hashValue <= threshold
}

// discard reports whether logger is the shared no-op logger.
func discard(logger *slog.Logger) bool {
	return logger == nil || logger == router.NoopLogger()
}
