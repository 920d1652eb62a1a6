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

// Package realip resolves the client address and scheme of requests that
// arrive through trusted reverse proxies.
//
// Forwarding headers are only consulted when the immediate peer is a trusted
// proxy. Otherwise the peer address from RemoteAddr is used as is. The result
// is stored in the "clientIP" (netip.Addr) and "clientScheme" request
// attributes, where ipfilter, accesslog and handlers read it.
//
//	resolver := realip.MustNew(
//	    realip.WithProxies("10.0.0.0/8", "192.168.0.0/16"),
//	    realip.WithMaxHops(2),
//	)
//	d := router.MustNewDispatcher([]router.Middleware{
//	    resolver,
//	    ipfilter.MustNew(allowed, ipfilter.WithClientIPAttribute(middleware.ClientIPAttribute)),
//	    routing.New(routes),
//	})
package realip

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
)

// Well-known client address headers.
const (
	HeaderXFF          = "X-Forwarded-For"
	HeaderXRealIP      = "X-Real-IP"
	HeaderCFConnecting = "CF-Connecting-IP"
)

// maxForwardedEntries is the X-Forwarded-For length above which a chain is
// reported as suspicious.
const maxForwardedEntries = 10

// ErrInvalidProxy indicates a trusted proxy entry that is neither an address
// nor a CIDR range.
var ErrInvalidProxy = errors.New("realip: invalid trusted proxy")

// Option configures a Resolver.
type Option func(*config)

type config struct {
	proxies []string
	headers []string
	maxHops int
	logger  *slog.Logger
}

// WithProxies sets the trusted proxies as addresses or CIDR ranges.
// Without trusted proxies forwarding headers are never used.
func WithProxies(proxies ...string) Option {
	return func(cfg *config) {
		cfg.proxies = append(cfg.proxies, proxies...)
	}
}

// WithHeaders sets the headers consulted, in order of preference.
// Defaults to X-Forwarded-For, then X-Real-IP. Any header holding a single
// address can be named, such as "Fastly-Client-IP" or "True-Client-IP".
func WithHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.headers = headers
	}
}

// WithMaxHops sets how many trusted proxies may be skipped in
// X-Forwarded-For. Default: 1
func WithMaxHops(n int) Option {
	return func(cfg *config) {
		cfg.maxHops = n
	}
}

// WithLogger reports suspicious X-Forwarded-For chains.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Resolver is the client address middleware.
type Resolver struct {
	trusted []netip.Prefix
	headers []string
	maxHops int
	logger  *slog.Logger
}

// New creates a Resolver. Invalid proxy entries fail with ErrInvalidProxy.
func New(opts ...Option) (*Resolver, error) {
	cfg := &config{logger: router.NoopLogger()}
	for _, opt := range opts {
		opt(cfg)
	}

	res := &Resolver{
		headers: cfg.headers,
		maxHops: cfg.maxHops,
		logger:  cfg.logger,
	}
	if len(res.headers) == 0 {
		res.headers = []string{HeaderXFF, HeaderXRealIP}
	}
	if res.maxHops <= 0 {
		res.maxHops = 1
	}
	for _, entry := range cfg.proxies {
		prefix, err := parseProxy(entry)
		if err != nil {
			return nil, err
		}
		res.trusted = append(res.trusted, prefix)
	}
	return res, nil
}

// MustNew is like [New] but panics on error.
func MustNew(opts ...Option) *Resolver {
	res, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return res
}

func parseProxy(entry string) (netip.Prefix, error) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%w: %q: %w", ErrInvalidProxy, entry, err)
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%w: %q: %w", ErrInvalidProxy, entry, err)
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Process implements router.Middleware.
func (res *Resolver) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	attrs := map[string]any{middleware.ClientSchemeAttribute: res.Scheme(r)}
	if addr := res.ClientIP(r); addr.IsValid() {
		attrs[middleware.ClientIPAttribute] = addr
	}
	return next.Handle(router.WithAttributes(r, attrs))
}

// ClientIP returns the client address of r. The result is invalid only when
// RemoteAddr cannot be parsed.
func (res *Resolver) ClientIP(r *http.Request) netip.Addr {
	peer := peerAddr(r.RemoteAddr)
	if !res.isTrusted(peer) {
		return peer
	}

	for _, name := range res.headers {
		values := r.Header.Values(name)
		if len(values) == 0 {
			continue
		}
		var addr netip.Addr
		if http.CanonicalHeaderKey(name) == http.CanonicalHeaderKey(HeaderXFF) {
			addr = res.fromForwardedFor(r, values)
		} else {
			addr = parseAddr(values[0])
		}
		if addr.IsValid() {
			return addr
		}
	}
	return peer
}

// Scheme returns "https" for TLS requests, or the X-Forwarded-Proto value
// sent by a trusted proxy, and "http" otherwise.
func (res *Resolver) Scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if res.isTrusted(peerAddr(r.RemoteAddr)) {
		switch strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))) {
		case "https":
			return "https"
		case "http":
			return "http"
		}
	}
	return "http"
}

// fromForwardedFor walks the chain from the right, skipping at most maxHops
// trusted proxies, and returns the first address that is not skipped. A
// malformed entry invalidates the whole header.
func (res *Resolver) fromForwardedFor(r *http.Request, values []string) netip.Addr {
	var entries []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				entries = append(entries, part)
			}
		}
	}
	if len(entries) == 0 {
		return netip.Addr{}
	}
	if len(entries) > maxForwardedEntries {
		res.logger.WarnContext(r.Context(), "suspicious X-Forwarded-For chain",
			"remote_addr", r.RemoteAddr,
			"entries", len(entries),
		)
	}

	hops := 0
	for i := len(entries) - 1; i >= 0; i-- {
		addr := parseAddr(entries[i])
		if !addr.IsValid() {
			return netip.Addr{}
		}
		if !res.isTrusted(addr) || hops >= res.maxHops || i == 0 {
			return addr
		}
		hops++
	}
	return netip.Addr{}
}

func (res *Resolver) isTrusted(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func peerAddr(remoteAddr string) netip.Addr {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	return parseAddr(host)
}

func parseAddr(s string) netip.Addr {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
