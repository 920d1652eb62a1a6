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

// Package ipfilter rejects requests from clients outside an allow-list.
//
// The allow-list holds single addresses and CIDR ranges. The client address
// is taken from the request RemoteAddr, or from a request attribute set by an
// earlier middleware. Behind reverse proxies, place realip first and read its
// "clientIP" attribute with WithClientIPAttribute. Denied requests receive
// 403 with the body "Access denied!".
package ipfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"rivaas.dev/web/router"
)

// ErrInvalidRange indicates an allow-list entry that is neither an address nor a CIDR range.
var ErrInvalidRange = errors.New("ipfilter: invalid address or range")

// DeniedBody is the body of a denied response.
const DeniedBody = "Access denied!"

// Option configures the filter.
type Option func(*Filter)

// WithClientIPAttribute reads the client address from the named request
// attribute instead of RemoteAddr. The attribute must hold a string or a
// netip.Addr; requests without it are denied.
func WithClientIPAttribute(name string) Option {
	return func(f *Filter) {
		f.attribute = name
	}
}

// WithResponseFactory sets the factory for denied responses.
func WithResponseFactory(factory router.ResponseFactory) Option {
	return func(f *Filter) {
		if factory != nil {
			f.factory = factory
		}
	}
}

// WithLogger logs denied requests at info level.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filter is the allow-list middleware.
type Filter struct {
	allowed   []netip.Prefix
	attribute string
	factory   router.ResponseFactory
	logger    *slog.Logger
}

// New creates a filter allowing the given addresses and CIDR ranges.
//
// Example:
//
//	f, err := ipfilter.New([]string{"127.0.0.1", "10.0.0.0/8", "::1"})
func New(allowed []string, opts ...Option) (*Filter, error) {
	f := &Filter{
		factory: router.DefaultResponseFactory,
		logger:  router.NoopLogger(),
	}
	for _, entry := range allowed {
		prefix, err := parseRange(entry)
		if err != nil {
			return nil, err
		}
		f.allowed = append(f.allowed, prefix)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// MustNew is like [New] but panics on error.
func MustNew(allowed []string, opts ...Option) *Filter {
	f, err := New(allowed, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func parseRange(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%w: %q: %w", ErrInvalidRange, entry, err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %q: %w", ErrInvalidRange, entry, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Process implements router.Middleware.
func (f *Filter) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	addr, ok := f.clientAddr(r)
	if !ok || !f.Allowed(addr) {
		f.logger.InfoContext(r.Context(), "client address denied",
			"remote_addr", r.RemoteAddr,
			"client_ip", addr.String(),
		)
		resp := f.factory.CreateResponse(http.StatusForbidden)
		_, _ = resp.WriteString(DeniedBody)
		return resp, nil
	}
	return next.Handle(r)
}

// Allowed reports whether addr falls inside the allow-list.
func (f *Filter) Allowed(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	for _, p := range f.allowed {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr extracts a single client address. Negated values ("!1.2.3.4")
// and ranges are rejected.
func (f *Filter) clientAddr(r *http.Request) (netip.Addr, bool) {
	var raw string
	if f.attribute != "" {
		switch v := router.Attribute(r, f.attribute).(type) {
		case netip.Addr:
			return v, v.IsValid()
		case string:
			raw = v
		default:
			return netip.Addr{}, false
		}
	} else {
		raw = r.RemoteAddr
		if host, _, err := net.SplitHostPort(raw); err == nil {
			raw = host
		}
	}

	if raw == "" || strings.HasPrefix(raw, "!") || strings.Contains(raw, "/") {
		return netip.Addr{}, false
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr, true
}
