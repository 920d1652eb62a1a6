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

package app

import (
	"context"
	"net/http"

	"rivaas.dev/web/router"
)

// Event is one of Startup, Shutdown, BeforeRequest, AfterRequest or
// AfterEmit.
type Event interface {
	eventName() string
}

// Startup is fired by Start once every OnStart hook succeeded.
type Startup struct{}

// Shutdown is fired by Shutdown before the OnShutdown hooks run.
type Shutdown struct{}

// BeforeRequest is fired before a request enters the middleware chain.
type BeforeRequest struct {
	Request *http.Request
}

// AfterRequest is fired when the chain returned.
type AfterRequest struct {
	Request  *http.Request
	Response *router.Response
	Err      error
}

// AfterEmit is fired by ServeHTTP after the response was written. Response
// is what was sent, including rendered errors.
type AfterEmit struct {
	Request  *http.Request
	Response *router.Response
}

func (Startup) eventName() string       { return "startup" }
func (Shutdown) eventName() string      { return "shutdown" }
func (BeforeRequest) eventName() string { return "before_request" }
func (AfterRequest) eventName() string  { return "after_request" }
func (AfterEmit) eventName() string     { return "after_emit" }

// EventName returns the snake_case name of e.
func EventName(e Event) string {
	return e.eventName()
}

// Listener receives events synchronously, in registration order.
type Listener func(ctx context.Context, e Event)

func (a *App) fire(ctx context.Context, e Event) {
	for _, l := range a.listeners {
		l(ctx, e)
	}
}
