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

// Package redirect answers every request with a redirect, either to a fixed
// URL or to a named route.
//
//	moved := redirect.New(nil, nil).ToURL("/blog")
//	home := redirect.New(nil, routes).ToRoute("site/index", nil).Temporary()
//
// Targets are resolved per request, so a route generator can be consulted
// lazily. The default status is 301 Moved Permanently.
package redirect

import (
	"errors"
	"maps"
	"net/http"

	"rivaas.dev/web/router"
)

// ErrNoTarget indicates a redirect configured with neither a URL nor a route.
var ErrNoTarget = errors.New("redirect: either ToURL or ToRoute must be used")

// URLGenerator builds URLs for named routes. *route.Group implements it.
type URLGenerator interface {
	Generate(name string, params map[string]string) (string, error)
}

// Redirect is redirecting middleware. Configuration methods return updated
// copies and leave the receiver unchanged.
type Redirect struct {
	factory   router.ResponseFactory
	generator URLGenerator

	url    string
	route  string
	params map[string]string
	status int
}

// New creates a redirect using factory for responses and generator for
// named route targets. A nil factory selects router.DefaultResponseFactory;
// generator may be nil when only ToURL is used.
func New(factory router.ResponseFactory, generator URLGenerator) *Redirect {
	if factory == nil {
		factory = router.DefaultResponseFactory
	}
	return &Redirect{
		factory:   factory,
		generator: generator,
		status:    http.StatusMovedPermanently,
	}
}

func (m *Redirect) clone() *Redirect {
	c := *m
	c.params = maps.Clone(m.params)
	return &c
}

// ToURL redirects to a fixed URL. It takes precedence over ToRoute.
func (m *Redirect) ToURL(url string) *Redirect {
	c := m.clone()
	c.url = url
	return c
}

// ToRoute redirects to the URL generated for the named route.
func (m *Redirect) ToRoute(name string, params map[string]string) *Redirect {
	c := m.clone()
	c.route = name
	c.params = maps.Clone(params)
	return c
}

// Status sets the response status code.
func (m *Redirect) Status(code int) *Redirect {
	c := m.clone()
	c.status = code
	return c
}

// Permanent uses 301 Moved Permanently.
func (m *Redirect) Permanent() *Redirect {
	return m.Status(http.StatusMovedPermanently)
}

// Temporary uses 303 See Other.
func (m *Redirect) Temporary() *Redirect {
	return m.Status(http.StatusSeeOther)
}

// Process implements router.Middleware. It never calls next.
func (m *Redirect) Process(_ *http.Request, _ router.Handler) (*router.Response, error) {
	target, err := m.target()
	if err != nil {
		return nil, err
	}
	return m.factory.CreateResponse(m.status).WithAddedHeader("Location", target), nil
}

func (m *Redirect) target() (string, error) {
	switch {
	case m.url != "":
		return m.url, nil
	case m.route != "" && m.generator != nil:
		return m.generator.Generate(m.route, m.params)
	case m.route != "":
		return "", errors.New("redirect: ToRoute requires a URL generator")
	default:
		return "", ErrNoTarget
	}
}
