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

// Package route defines URL routes and matches requests against them.
//
// A route binds a method, a path template, an optional host, a handler and
// an optional name:
//
//	routes := route.MustNewGroup(
//	    route.Get("post/<id:\\d+>").ToFunc(viewPost).WithName("post/view"),
//	    route.Get("posts").ToFunc(listPosts).WithName("post/list"),
//	    route.Post("posts").To(createPost).WithHost("api.example.com"),
//	)
//
// # Templates
//
// Templates are literal text with named placeholders. A placeholder is
// written <name> or <name:regex>; without a regex it matches one or more
// characters other than "/". A leading slash is optional on both templates
// and request paths, so "posts" and "/posts" are the same route. A trailing
// slash is significant: "posts/" does not match "posts".
//
// Constraints may also be attached with the Where builders:
//
//	route.Get("users/<id>").ToFunc(viewUser).WhereInt("id")
//
// # Matching
//
// [Group.Match] tries routes in registration order and returns a
// [MatchResult]. The first route whose method, host and path all match
// wins. A match on a route without a handler is reported as [NoHandler],
// which callers should treat as a server misconfiguration rather than a
// missing page. When nothing matches, the result is [NoMatch] carrying the
// reason the first registered route failed.
//
// # Reverse Routing
//
// Named routes can be turned back into URLs with [Group.Generate]:
//
//	u, _ := routes.Generate("post/view", map[string]string{"id": "42", "ref": "feed"})
//	// u == "/post/42?ref=feed"
//
// Routes and groups are configured at startup. Once a group serves
// requests, its routes are read-only and safe for concurrent use.
package route
