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

// Package cors implements Cross-Origin Resource Sharing.
//
// Preflight requests (OPTIONS carrying Access-Control-Request-Method) are
// answered directly with 204 No Content. Other cross-origin requests pass
// through the chain and have the CORS headers added to their response.
// Requests without an Origin header are not touched.
//
// Example:
//
//	cors.New(
//	    cors.WithAllowedOrigins("https://app.example.com"),
//	    cors.WithAllowCredentials(true),
//	)
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"rivaas.dev/web/router"
)

// Option defines functional options for CORS middleware configuration.
type Option func(*config)

type config struct {
	allowedOrigins   []string
	allowAllOrigins  bool
	allowOriginFunc  func(origin string) bool
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	factory          router.ResponseFactory
}

func defaultConfig() *config {
	return &config{
		allowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
		factory:        router.DefaultResponseFactory,
	}
}

// Middleware applies the CORS policy.
type Middleware struct {
	cfg *config

	allowMethods  string
	allowHeaders  string
	exposeHeaders string
	maxAge        string
}

// New returns a CORS middleware. With no origin options every cross-origin
// request is refused.
func New(opts ...Option) *Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Middleware{
		cfg:           cfg,
		allowMethods:  strings.Join(cfg.allowedMethods, ", "),
		allowHeaders:  strings.Join(cfg.allowedHeaders, ", "),
		exposeHeaders: strings.Join(cfg.exposedHeaders, ", "),
	}
	if cfg.maxAge > 0 {
		m.maxAge = strconv.Itoa(cfg.maxAge)
	}
	return m
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return next.Handle(r)
	}

	allowed := m.allowed(origin)

	if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
		resp := m.cfg.factory.CreateResponse(http.StatusNoContent)
		h := resp.Header()
		h.Add("Vary", "Origin")
		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")
		if !allowed {
			return resp, nil
		}
		m.setOrigin(h, origin)
		h.Set("Access-Control-Allow-Methods", m.allowMethods)
		if m.allowHeaders != "" {
			h.Set("Access-Control-Allow-Headers", m.allowHeaders)
		}
		if m.maxAge != "" {
			h.Set("Access-Control-Max-Age", m.maxAge)
		}
		return resp, nil
	}

	resp, err := next.Handle(r)
	if resp == nil {
		return resp, err
	}
	h := resp.Header()
	h.Add("Vary", "Origin")
	if allowed {
		m.setOrigin(h, origin)
		if m.exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", m.exposeHeaders)
		}
	}
	return resp, err
}

func (m *Middleware) allowed(origin string) bool {
	switch {
	case m.cfg.allowAllOrigins:
		return true
	case slices.Contains(m.cfg.allowedOrigins, origin):
		return true
	case m.cfg.allowOriginFunc != nil:
		return m.cfg.allowOriginFunc(origin)
	}
	return false
}

func (m *Middleware) setOrigin(h http.Header, origin string) {
	// "*" is not accepted by browsers together with credentials.
	if m.cfg.allowAllOrigins && !m.cfg.allowCredentials {
		h.Set("Access-Control-Allow-Origin", "*")
	} else {
		h.Set("Access-Control-Allow-Origin", origin)
	}
	if m.cfg.allowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
}
