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

package compression

import (
	"compress/gzip"
	"log/slog"
	"strings"

	"rivaas.dev/web/router"
)

// Option defines functional options for compression middleware configuration.
type Option func(*config)

type config struct {
	logger              *slog.Logger
	gzipLevel           int
	brotliLevel         int
	minSize             int
	enableGzip          bool
	enableBrotli        bool
	excludePaths        map[string]bool
	excludeExtensions   map[string]bool
	excludeContentTypes map[string]bool
}

func defaultConfig() *config {
	return &config{
		logger:              router.NoopLogger(),
		gzipLevel:           gzip.DefaultCompression,
		brotliLevel:         4,
		minSize:             DefaultMinSize,
		enableGzip:          true,
		enableBrotli:        true,
		excludePaths:        make(map[string]bool),
		excludeExtensions:   make(map[string]bool),
		excludeContentTypes: make(map[string]bool),
	}
}

// WithGzipLevel sets the gzip level, from gzip.HuffmanOnly (-2) to
// gzip.BestCompression (9). Out of range values are ignored.
func WithGzipLevel(level int) Option {
	return func(cfg *config) {
		if level >= gzip.HuffmanOnly && level <= gzip.BestCompression {
			cfg.gzipLevel = level
		}
	}
}

// WithBrotliLevel sets the Brotli level, clamped to [0, 11].
// Levels 4 and 5 suit dynamic content. Default: 4
func WithBrotliLevel(level int) Option {
	return func(cfg *config) {
		cfg.brotliLevel = max(0, min(level, 11))
	}
}

// WithBrotliDisabled disables Brotli (gzip only).
func WithBrotliDisabled() Option {
	return func(cfg *config) {
		cfg.enableBrotli = false
	}
}

// WithGzipDisabled disables gzip (Brotli only).
func WithGzipDisabled() Option {
	return func(cfg *config) {
		cfg.enableGzip = false
	}
}

// WithMinSize sets the smallest body, in bytes, worth compressing.
// Zero compresses every non-empty body. Default: 1024
func WithMinSize(size int) Option {
	return func(cfg *config) {
		cfg.minSize = max(0, size)
	}
}

// WithExcludePaths disables compression for exact request paths.
//
// Example:
//
//	compression.New(compression.WithExcludePaths("/metrics", "/stream"))
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludeExtensions disables compression for request paths ending in
// one of the given extensions, such as ".png" or ".zip".
func WithExcludeExtensions(extensions ...string) Option {
	return func(cfg *config) {
		for _, ext := range extensions {
			cfg.excludeExtensions[strings.ToLower(ext)] = true
		}
	}
}

// WithExcludeContentTypes disables compression for responses whose
// Content-Type contains one of the given values.
func WithExcludeContentTypes(contentTypes ...string) Option {
	return func(cfg *config) {
		for _, ct := range contentTypes {
			cfg.excludeContentTypes[strings.ToLower(ct)] = true
		}
	}
}

// WithLogger sets the logger for compression failures.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
