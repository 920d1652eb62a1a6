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
	"maps"
	"net/http"
	"regexp"
	"strings"

	"rivaas.dev/web/router"
)

// MethodAny matches every request method.
const MethodAny = "ANY"

// Common constraint patterns for the Where builders.
const (
	PatternInt      = `\d+`
	PatternFloat    = `-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`
	PatternUUID     = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`
	PatternDate     = `\d{4}-\d{2}-\d{2}`
	PatternSlug     = `[a-z0-9]+(?:-[a-z0-9]+)*`
	PatternWildcard = `.+`
)

// Route describes a single routable endpoint.
//
// Builder methods never modify the receiver: each returns an updated copy,
// so a partially configured route can serve as a template for several others.
type Route struct {
	method      string
	template    string
	host        string
	handler     router.Middleware
	name        string
	params      map[string]string
	constraints map[string]string
}

// New creates a route for method and template. Method names are
// case-insensitive; [MethodAny] matches every method.
func New(method, template string) *Route {
	return &Route{method: strings.ToUpper(method), template: template}
}

// Get creates a GET route.
func Get(template string) *Route { return New(http.MethodGet, template) }

// Post creates a POST route.
func Post(template string) *Route { return New(http.MethodPost, template) }

// Put creates a PUT route.
func Put(template string) *Route { return New(http.MethodPut, template) }

// Patch creates a PATCH route.
func Patch(template string) *Route { return New(http.MethodPatch, template) }

// Delete creates a DELETE route.
func Delete(template string) *Route { return New(http.MethodDelete, template) }

// Head creates a HEAD route.
func Head(template string) *Route { return New(http.MethodHead, template) }

// Options creates an OPTIONS route.
func Options(template string) *Route { return New(http.MethodOptions, template) }

// Any creates a route matching every method.
func Any(template string) *Route { return New(MethodAny, template) }

func (r *Route) clone() *Route {
	c := *r
	c.params = maps.Clone(r.params)
	c.constraints = maps.Clone(r.constraints)
	return &c
}

// To returns a copy of r dispatching to m. The middleware receives the
// remainder of the outer chain as next.
func (r *Route) To(m router.Middleware) *Route {
	c := r.clone()
	c.handler = m
	return c
}

// ToFunc returns a copy of r dispatching to a plain handler function.
func (r *Route) ToFunc(h router.HandlerFunc) *Route {
	if h == nil {
		return r.To(nil)
	}
	return r.To(router.Callback(h))
}

// WithName returns a copy of r with the given name.
func (r *Route) WithName(name string) *Route {
	c := r.clone()
	c.name = name
	return c
}

// WithHost returns a copy of r that only matches requests for host.
// The comparison is an exact string match against the request Host.
func (r *Route) WithHost(host string) *Route {
	c := r.clone()
	c.host = host
	return c
}

// WithParam returns a copy of r carrying an extra parameter. Route
// parameters are reported with every match and act as defaults for
// reverse routing; captured values take precedence.
func (r *Route) WithParam(key, value string) *Route {
	c := r.clone()
	if c.params == nil {
		c.params = make(map[string]string)
	}
	c.params[key] = value
	return c
}

// WithParams is like [Route.WithParam] for several parameters.
func (r *Route) WithParams(params map[string]string) *Route {
	c := r.clone()
	if c.params == nil {
		c.params = make(map[string]string, len(params))
	}
	maps.Copy(c.params, params)
	return c
}

// Where returns a copy of r constraining placeholder param to pattern,
// replacing any constraint written in the template. The pattern is checked
// when the route is added to a group.
//
// Example:
//
//	route.Get("files/<name>").ToFunc(serveFile).Where("name", `[a-zA-Z0-9.-]+`)
func (r *Route) Where(param, pattern string) *Route {
	c := r.clone()
	if c.constraints == nil {
		c.constraints = make(map[string]string)
	}
	c.constraints[param] = pattern
	return c
}

// WhereInt constrains param to decimal digits.
func (r *Route) WhereInt(param string) *Route { return r.Where(param, PatternInt) }

// WhereFloat constrains param to a decimal or scientific number.
func (r *Route) WhereFloat(param string) *Route { return r.Where(param, PatternFloat) }

// WhereUUID constrains param to a UUID in its canonical text form.
func (r *Route) WhereUUID(param string) *Route { return r.Where(param, PatternUUID) }

// WhereDate constrains param to an RFC 3339 full-date.
func (r *Route) WhereDate(param string) *Route { return r.Where(param, PatternDate) }

// WhereSlug constrains param to lowercase words joined by hyphens.
func (r *Route) WhereSlug(param string) *Route { return r.Where(param, PatternSlug) }

// WhereEnum constrains param to one of values.
func (r *Route) WhereEnum(param string, values ...string) *Route {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return r.Where(param, strings.Join(quoted, "|"))
}

// Method returns the HTTP method, or [MethodAny].
func (r *Route) Method() string { return r.method }

// Template returns the path template.
func (r *Route) Template() string { return r.template }

// Host returns the host constraint, or "".
func (r *Route) Host() string { return r.host }

// Handler returns the route handler, or nil.
func (r *Route) Handler() router.Middleware { return r.handler }

// Name returns the route name, or "".
func (r *Route) Name() string { return r.name }

// Params returns a copy of the route parameters.
func (r *Route) Params() map[string]string { return maps.Clone(r.params) }

// Constraints returns a copy of the constraints set with the Where builders.
func (r *Route) Constraints() map[string]string { return maps.Clone(r.constraints) }

func (r *Route) matchesMethod(method string) bool {
	return r.method == MethodAny || r.method == method
}

// String returns a short description such as "GET book/<id>".
func (r *Route) String() string {
	s := r.method + " " + r.template
	if r.host != "" {
		s += " (" + r.host + ")"
	}
	if r.name != "" {
		s += " [" + r.name + "]"
	}
	return s
}
