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

// Package header parses parameterized HTTP header values and ranks
// Accept-style candidates by quality factor and specificity.
//
// Parsing follows the RFC 7230 parameter grammar: a primary token followed by
// semicolon separated name=value pairs, where values are either tokens or
// quoted strings. Quality factors follow RFC 7231 section 5.3.1 and are
// validated strictly; a malformed q aborts negotiation for the whole header.
//
//	types, err := header.SortAcceptTypes("text/*, text/plain, text/plain;format=flowed, */*")
//	// types: [text/plain;format=flowed text/plain text/* */*]
//
// Errors are reported as [*SyntaxError], which answers 400 through its
// HTTPStatus method so that error formatters can map it to a client error.
package header
