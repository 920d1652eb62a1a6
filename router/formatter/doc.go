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

// Package formatter serializes response data into the representation the
// client asked for.
//
// A handler returns a data response, leaving the body empty:
//
//	return formatter.Data(http.StatusOK, book), nil
//
// and the negotiating middleware, placed before routing, encodes Data as
// JSON, XML, YAML or plain text according to the Accept header:
//
//	d := router.MustNewDispatcher([]router.Middleware{
//	    formatter.New(formatter.NewJSON(), formatter.NewXML(), formatter.NewYAML()),
//	    routing.New(routes),
//	})
//
// The first formatter is the default for clients that accept anything.
// Using applies a single formatter without negotiation.
package formatter
