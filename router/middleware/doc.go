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

/*
Package middleware holds the names shared by the middleware sub-packages.

Each middleware lives in its own package and implements router.Middleware:

Routing:
  - routing: resolves the route for a request and dispatches to its handler
  - actions: calls a controller method named by the "action" attribute
  - redirect: answers with a redirect to a URL or a named route

Request handling:
  - jsonbody: decodes JSON request bodies into the "parsedBody" attribute
  - ipfilter: rejects clients outside an address allow-list

Observability and reliability:
  - requestid: request ID generation and propagation
  - accesslog: structured access logging with sampling and filtering
  - recovery: converts panics into errors

# Usage

	routes := route.MustNewGroup(
	    route.Get("post/<id:\\d+>").ToFunc(viewPost).WithName("post/view"),
	)

	d := router.MustNewDispatcher([]router.Middleware{
	    recovery.New(),
	    requestid.New(),
	    accesslog.New(accesslog.WithLogger(logger)),
	    jsonbody.New(),
	    routing.New(routes),
	})

Middleware order matters: requests travel through the list top to bottom and
responses travel back bottom to top.
*/
package middleware
