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

package middleware

import (
	"context"
	"net/http"
	"sync"
)

// ContextKey is a type for context keys to avoid collisions with other packages.
type ContextKey string

// Context keys used across middlewares.
const (
	// RequestIDKey is the context key for storing request ID.
	// Used by: RequestID middleware (sets it) and AccessLog middleware (reads it).
	RequestIDKey ContextKey = "middleware.request_id"
)

// Request attribute names set by the middlewares and read by handlers.
// See router.Attribute.
const (
	// RouteNameAttribute holds the name of the matched route (string).
	RouteNameAttribute = "routeName"

	// RouteParamsAttribute holds all parameters of the matched route
	// (map[string]string). Each parameter is also stored under its own name.
	RouteParamsAttribute = "routeParams"

	// ActionAttribute names the controller action to call (string).
	ActionAttribute = "action"

	// ParsedBodyAttribute holds the decoded request body.
	ParsedBodyAttribute = "parsedBody"

	// ClientIPAttribute holds the resolved client address (netip.Addr).
	ClientIPAttribute = "clientIP"

	// ClientSchemeAttribute holds the scheme the client used ("http" or "https").
	ClientSchemeAttribute = "clientScheme"
)

type matchedRouteKey struct{}

// MatchedRoute carries the route picked by the routing middleware back to
// middlewares running before it. Request attributes only flow inward, so
// observers that need the route after next returns install a MatchedRoute
// with TrackRoute.
type MatchedRoute struct {
	mu       sync.Mutex
	name     string
	template string
}

// TrackRoute returns r with a MatchedRoute attached. An existing tracker is
// reused so every observer in the chain sees the same value.
func TrackRoute(r *http.Request) (*http.Request, *MatchedRoute) {
	if mr := MatchedRouteFrom(r.Context()); mr != nil {
		return r, mr
	}
	mr := &MatchedRoute{}
	return r.WithContext(context.WithValue(r.Context(), matchedRouteKey{}, mr)), mr
}

// MatchedRouteFrom returns the tracker stored in ctx, or nil.
func MatchedRouteFrom(ctx context.Context) *MatchedRoute {
	mr, _ := ctx.Value(matchedRouteKey{}).(*MatchedRoute)
	return mr
}

// Set records the matched route.
func (m *MatchedRoute) Set(name, template string) {
	m.mu.Lock()
	m.name, m.template = name, template
	m.mu.Unlock()
}

// Name returns the route name, empty for unnamed routes.
func (m *MatchedRoute) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// Template returns the path template of the route, empty when nothing matched.
func (m *MatchedRoute) Template() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.template
}
