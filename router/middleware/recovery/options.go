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

package recovery

import "log/slog"

// Option configures the recovery middleware.
type Option func(*config)

type config struct {
	stackTrace bool
	stackSize  int
	logger     *slog.Logger
	handler    Handler
}

func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		logger:     slog.Default(),
	}
}

// WithLogger sets the logger for recovered panics.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithoutLogging disables panic logging.
func WithoutLogging() Option {
	return func(cfg *config) {
		cfg.logger = nil
	}
}

// WithHandler answers recovered panics with h instead of returning a
// *PanicError.
//
// Example:
//
//	recovery.WithHandler(func(r *http.Request, v any) (*router.Response, error) {
//	    return router.NewResponse(http.StatusServiceUnavailable), nil
//	})
func WithHandler(h Handler) Option {
	return func(cfg *config) {
		cfg.handler = h
	}
}

// WithStackTrace enables or disables stack capture. Default: true
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithStackSize bounds the captured stack in bytes. Zero or less keeps the
// whole stack. Default: 4KB
func WithStackSize(size int) Option {
	return func(cfg *config) {
		cfg.stackSize = size
	}
}
