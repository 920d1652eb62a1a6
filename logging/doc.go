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

// Package logging builds the structured logger shared by an application.
//
// The result of New wraps a *slog.Logger that writes JSON, key=value text,
// or colored console lines. Every record carries the configured service
// name, version and environment. Values under sensitive keys (password,
// token, authorization, ...) are redacted. The level can change at runtime
// through SetLevel.
//
//	logger := logging.MustNew(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("books"),
//	    logging.WithTraceCorrelation(),
//	)
//	accesslog.New(accesslog.WithLogger(logger.Logger()))
//
// With trace correlation enabled, records logged through the *Context
// methods of slog carry the trace_id and span_id of the active
// OpenTelemetry span. ContextLogger does the same for a single request.
package logging
