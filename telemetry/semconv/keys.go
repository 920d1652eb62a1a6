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

package semconv

// Service metadata.
const (
	ServiceName       = "service.name"
	ServiceVersion    = "service.version"
	DeploymentEnviron = "deployment.environment"
)

// HTTP request and response attributes.
const (
	HTTPMethod     = "http.method"
	HTTPRoute      = "http.route"
	HTTPTarget     = "http.target"
	HTTPHost       = "http.host"
	HTTPUserAgent  = "http.user_agent"
	HTTPStatusCode = "http.status_code"

	// HTTPRequestHeaderPrefix is followed by the lowercase header name.
	HTTPRequestHeaderPrefix = "http.request.header."

	// RouteName is the name given to the matched route, if any.
	RouteName = "rivaas.route.name"
)

// NetworkPeerAddr is the remote address of the connection.
const NetworkPeerAddr = "net.peer.addr"

// Log and trace correlation.
const (
	TraceID   = "trace_id"
	SpanID    = "span_id"
	RequestID = "request_id"
)
