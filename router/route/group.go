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

package route

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"
)

// compiled pairs a route with its compiled pattern.
type compiled struct {
	route   *Route
	pattern *Pattern
}

// table is an immutable snapshot of a group's routes.
type table struct {
	entries []compiled
	byName  map[string]int
}

// Group is an ordered collection of routes that matches requests and
// generates URLs. Registration order is match priority.
type Group struct {
	table atomic.Pointer[table]
}

// NewGroup compiles routes into a group. Every template is compiled here,
// once; it fails with [ErrInvalidPattern] (as a [*PatternError]) or
// [ErrDuplicateName].
func NewGroup(routes ...*Route) (*Group, error) {
	g := &Group{}
	g.table.Store(&table{byName: map[string]int{}})
	if err := g.Add(routes...); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNewGroup is like [NewGroup] but panics on error.
func MustNewGroup(routes ...*Route) *Group {
	g, err := NewGroup(routes...)
	if err != nil {
		panic(err)
	}
	return g
}

// Add appends routes after the existing ones. Either all routes are added
// or, on error, none are. Add is meant for configuration time.
func (g *Group) Add(routes ...*Route) error {
	for {
		old := g.table.Load()
		next := &table{
			entries: slices.Clone(old.entries),
			byName:  maps.Clone(old.byName),
		}

		for _, rt := range routes {
			if rt == nil {
				return ErrNilRoute
			}
			p, err := compilePattern(rt.template, rt.constraints)
			if err != nil {
				return err
			}
			if rt.name != "" {
				if _, dup := next.byName[rt.name]; dup {
					return fmt.Errorf("%w: %q", ErrDuplicateName, rt.name)
				}
				next.byName[rt.name] = len(next.entries)
			}
			next.entries = append(next.entries, compiled{route: rt, pattern: p})
		}

		if g.table.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// Routes returns the registered routes in priority order.
func (g *Group) Routes() []*Route {
	t := g.table.Load()
	out := make([]*Route, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.route
	}
	return out
}

// Len returns the number of registered routes.
func (g *Group) Len() int {
	return len(g.table.Load().entries)
}

// Lookup returns the route registered under name.
func (g *Group) Lookup(name string) (*Route, bool) {
	t := g.table.Load()
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.entries[i].route, true
}

// Match finds the first route matching the method, host and path of r.
//
// Routes are checked in registration order. Each is tested for method, then
// host, then path. When no route matches, the result carries the reason the
// first registered route was rejected.
func (g *Group) Match(r *http.Request) MatchResult {
	t := g.table.Load()

	result := MatchResult{Outcome: NoMatch, Reason: ReasonNone}
	for i, e := range t.entries {
		reason, captured := e.match(r)
		if reason == ReasonNone {
			return matched(e.route, captured)
		}
		if i == 0 {
			result.Reason = reason
		}
	}
	return result
}

func (e compiled) match(r *http.Request) (Reason, map[string]string) {
	if !e.route.matchesMethod(r.Method) {
		return MethodMismatch, nil
	}
	if e.route.host != "" && e.route.host != r.Host {
		return HostMismatch, nil
	}
	captured, ok := e.pattern.Match(r.URL.Path)
	if !ok {
		return PathMismatch, nil
	}
	return ReasonNone, captured
}

// Generate builds the URL of the named route. Placeholders are filled from
// params, falling back to the route's own parameters; params left over
// become the query string, sorted by key.
//
// Errors wrap [ErrRouteNotFound], [ErrMissingParameter] or
// [ErrParameterMismatch].
func (g *Group) Generate(name string, params map[string]string) (string, error) {
	t := g.table.Load()
	i, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}
	e := t.entries[i]

	values := maps.Clone(e.route.params)
	if values == nil {
		values = make(map[string]string, len(params))
	}
	maps.Copy(values, params)

	path, used, err := e.pattern.Build(values)
	if err != nil {
		return "", fmt.Errorf("route %q: %w", name, err)
	}

	query := url.Values{}
	for k, v := range params {
		if !used[k] {
			query.Set(k, v)
		}
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}
