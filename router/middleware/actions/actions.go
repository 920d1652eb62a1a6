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

// Package actions dispatches a request to one of several named handlers,
// chosen by the "action" request attribute.
//
// It pairs with a route placeholder named action:
//
//	posts := actions.Funcs(map[string]router.HandlerFunc{
//	    "index": listPosts,
//	    "view":  viewPost,
//	})
//	route.Any(`post/<action:\w+>`).To(posts)
//
// Requests naming an unknown action are passed to next.
package actions

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
)

// ErrNoAction indicates a request without an action attribute.
var ErrNoAction = errors.New("actions: request has no action attribute")

// Controller maps action names to handlers.
type Controller map[string]router.Middleware

// Funcs builds a Controller from plain handler functions. Nil functions
// are left out, so their actions are treated as unknown.
func Funcs(handlers map[string]router.HandlerFunc) Controller {
	c := make(Controller, len(handlers))
	for name, h := range handlers {
		if h == nil {
			continue
		}
		c[name] = router.Callback(h)
	}
	return c
}

// Process implements router.Middleware.
func (c Controller) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	raw, ok := router.LookupAttribute(r, middleware.ActionAttribute)
	if !ok || raw == nil {
		return nil, ErrNoAction
	}
	action, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNoAction, raw)
	}

	h, ok := c[action]
	if !ok || h == nil {
		return next.Handle(r)
	}
	return h.Process(r, next)
}

// Actions returns the registered action names, sorted.
func (c Controller) Actions() []string {
	return slices.Sorted(maps.Keys(c))
}
