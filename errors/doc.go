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

// Package errors renders errors as HTTP responses.
//
// Three formats are provided:
//   - RFC9457: RFC 9457 Problem Details (application/problem+json)
//   - JSONAPI: JSON:API error objects (application/vnd.api+json)
//   - Simple: a plain {"error": "..."} JSON object (application/json)
//
// Negotiated chooses among formatters using the Accept header of the
// failing request, falling back to its first formatter when the client
// expresses no usable preference.
//
// Errors control the result through optional interfaces:
//
//   - ErrorType: declares the HTTP status code
//   - ErrorDetails: exposes structured details such as field errors
//   - ErrorCode: exposes a machine-readable code
//
// Errors from the router packages already implement these. A header
// syntax error answers 400, a route without a handler 500, a recovered
// panic 500 with code "internal_error".
//
// Render turns a formatted error into a *router.Response; Handler adapts
// a Formatter to router.HTTPHandler:
//
//	d := router.MustNewDispatcher(mws)
//	http.Handle("/", router.HTTPHandler(d, errors.Handler(errors.DefaultNegotiated(""))))
package errors
