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

// Package router provides the request-handling core of the web stack:
// response values, the handler and middleware contracts, a request attribute
// bag, and the middleware [Dispatcher] that drives a request through an
// ordered chain.
//
// # Handlers and Middleware
//
// A [Handler] turns a request into a response. A [Middleware] receives the
// request together with the remainder of the chain and either answers the
// request itself or delegates by calling next.Handle:
//
//	auth := router.MiddlewareFunc(func(r *http.Request, next router.Handler) (*router.Response, error) {
//	    if r.Header.Get("Authorization") == "" {
//	        return router.NewResponse(http.StatusUnauthorized), nil
//	    }
//	    return next.Handle(r)
//	})
//
// Plain handler functions become middleware through [Callback]. A callback
// never delegates; it always produces the response:
//
//	hello := router.Callback(func(r *http.Request) (*router.Response, error) {
//	    resp := router.NewResponse(http.StatusOK)
//	    resp.WriteString("hello")
//	    return resp, nil
//	})
//
// # Dispatcher
//
// The [Dispatcher] holds an ordered middleware list and a fallback handler.
// Each call to [Dispatcher.Handle] walks the list with its own position, so a
// single Dispatcher serves any number of concurrent requests. When every
// middleware delegates, the fallback (404 Not Found by default) answers.
//
//	d := router.MustNewDispatcher([]router.Middleware{requestID, auth, hello})
//	resp, err := d.Handle(req)
//
// Middleware run in registration order on the way in; responses travel back
// out in reverse order. The middleware list is configuration: build it, and
// call [Dispatcher.Add], before serving traffic.
//
// # Attributes
//
// Values that middleware pass downstream (route parameters, parsed bodies,
// client addresses) travel in the request's attribute bag. [WithAttribute]
// returns a request copy carrying a copied bag, leaving the original request
// untouched:
//
//	r = router.WithAttribute(r, "action", "view")
//	action, _ := router.Attribute(r, "action").(string)
package router
