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

// Package app ties the dispatcher, error rendering and observability into
// a runnable HTTP application.
//
// An App owns a middleware chain ending in a routing middleware. Every
// request fires BeforeRequest and AfterRequest events around dispatch.
// ServeHTTP turns returned errors into responses through the error
// formatter, emits the response and fires AfterEmit.
//
//	routes := route.MustNewGroup(
//	    route.Get("books/<id:\d+>").ToFunc(viewBook).WithName("book"),
//	)
//	settings, err := app.LoadSettings(ctx, config.WithFile("app.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a := app.MustNew(
//	    app.WithSettings(settings),
//	    app.WithRoutes(routes),
//	)
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//	if err := a.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Settings
//
// [WithSettings] installs the standard middleware stack in front of the
// caller's middleware: the metrics endpoint, request IDs, tracing, request
// metrics, access logging, panic recovery and data formatting. Tracing and
// metrics are only added when enabled. Without settings the chain holds
// exactly the middleware that was passed in.
//
// # Lifecycle
//
// [App.Start] runs OnStart hooks in order, aborting on the first error,
// then fires Startup. [App.Shutdown] fires Shutdown, runs OnShutdown hooks
// last-registered first and stops the tracer and logger the App created.
// [App.Run] and [App.Serve] wrap both around an http.Server and shut down
// gracefully when their context is cancelled.
package app
