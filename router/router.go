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

package router

import (
	"io"
	"log/slog"
	"net/http"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
// Middleware packages use it as their default so that logging calls never
// need a nil check.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// ErrorHandler writes a response for an error returned by a [Handler].
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// HTTPHandler adapts h to net/http. Errors returned by h are passed to
// onError; a nil onError answers with 500 Internal Server Error.
func HTTPHandler(h Handler, onError ErrorHandler) http.Handler {
	if onError == nil {
		onError = defaultErrorHandler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.Handle(r)
		if err != nil {
			onError(w, r, err)
			return
		}
		if resp == nil {
			onError(w, r, ErrNilResponse)
			return
		}
		// The client is gone once a write fails; there is nobody left to tell.
		_ = resp.Emit(w)
	})
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
