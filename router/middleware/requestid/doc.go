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

// Package requestid provides middleware for generating and tracking request IDs
// for distributed tracing and correlation.
//
// Each request gets an ID that is stored in the request context and echoed
// in the response headers, so clients can correlate requests across services.
//
// # Basic Usage
//
//	d := router.MustNewDispatcher([]router.Middleware{
//	    requestid.New(),
//	    routing.New(routes),
//	})
//
// # Request ID Generation
//
//   - X-Request-ID header: the client's ID is reused when allowed and valid
//   - UUID v7 (default): time-ordered, RFC 9562 compliant
//   - ULID (WithULID): 26 characters, lexicographically sortable
//
// # Accessing Request ID
//
//	func handler(r *http.Request) (*router.Response, error) {
//	    id := requestid.Get(r)
//	    ...
//	}
//
// # Integration with Logging
//
// The access log middleware reads the ID from the context automatically:
//
//	logger.InfoContext(ctx, "processing request",
//	    "request_id", requestid.FromContext(ctx),
//	)
package requestid
