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

// Package compression compresses response bodies with Brotli or gzip.
//
// The encoding is negotiated from Accept-Encoding. Brotli wins ties. Since
// responses are buffered until they are emitted, the middleware sees the
// whole body and can skip small ones (see [WithMinSize]).
//
// Responses are left alone when they:
//
//   - have status 204, 206 or 304, or an empty body
//   - already carry a Content-Encoding
//   - are event streams, gRPC or octet streams, or an excluded content type
//   - were produced for an excluded path or file extension
//
// Example:
//
//	compression.New(
//	    compression.WithBrotliLevel(5),
//	    compression.WithExcludePaths("/metrics"),
//	)
package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/header"
)

// Content codings.
const (
	EncodingBrotli = "br"
	EncodingGzip   = "gzip"
)

// DefaultMinSize is the default size below which bodies are sent as is.
const DefaultMinSize = 1024

// Middleware compresses responses.
type Middleware struct {
	cfg    *config
	offers []string
	gzip   *sync.Pool
	br     *sync.Pool
}

// New returns a compression middleware.
func New(opts ...Option) *Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Middleware{cfg: cfg}
	if cfg.enableBrotli {
		m.offers = append(m.offers, EncodingBrotli)
		m.br = brotliPool(cfg.brotliLevel)
	}
	if cfg.enableGzip {
		m.offers = append(m.offers, EncodingGzip)
		m.gzip = gzipPool(cfg.gzipLevel)
	}
	return m
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	resp, err := next.Handle(r)
	if resp == nil || err != nil || len(m.offers) == 0 || m.skipRequest(r) {
		return resp, err
	}

	// Unserialized Data is encoded further out; the body is not final yet.
	if resp.Data != nil && resp.BodyLen() == 0 {
		return resp, nil
	}

	h := resp.Header()
	if h.Get("Content-Encoding") != "" || skipStatus(resp.StatusCode) ||
		skipContentType(h.Get("Content-Type"), m.cfg.excludeContentTypes) {
		return resp, nil
	}
	// Bodies depend on Accept-Encoding from here on, compressed or not.
	h.Add("Vary", "Accept-Encoding")
	if resp.BodyLen() == 0 || resp.BodyLen() < m.cfg.minSize {
		return resp, nil
	}

	if len(r.Header.Values("Accept-Encoding")) == 0 {
		return resp, nil
	}
	encoding, negErr := header.AcceptsEncodings(r, m.offers...)
	if negErr != nil || encoding == "" {
		return resp, nil //nolint:nilerr // a malformed Accept-Encoding gets an identity body
	}

	compressed, cerr := m.compress(encoding, resp.Body())
	if cerr != nil {
		m.cfg.logger.Warn("compression failed", "encoding", encoding, "error", cerr)
		return resp, nil
	}

	resp.ResetBody()
	_, _ = resp.Write(compressed)
	h.Set("Content-Encoding", encoding)
	h.Del("Content-Length")
	return resp, nil
}

func (m *Middleware) skipRequest(r *http.Request) bool {
	if m.cfg.excludePaths[r.URL.Path] {
		return true
	}
	ext := path.Ext(r.URL.Path)
	return ext != "" && m.cfg.excludeExtensions[strings.ToLower(ext)]
}

func (m *Middleware) compress(encoding string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(body) / 2)

	var (
		w    io.WriteCloser
		pool *sync.Pool
	)
	switch encoding {
	case EncodingBrotli:
		bw := m.br.Get().(*brotli.Writer)
		bw.Reset(&buf)
		w, pool = bw, m.br
	default:
		gw := m.gzip.Get().(*gzip.Writer)
		gw.Reset(&buf)
		w, pool = gw, m.gzip
	}

	_, err := w.Write(body)
	if cerr := w.Close(); err == nil {
		err = cerr
	}

	switch pw := w.(type) {
	case *brotli.Writer:
		pw.Reset(io.Discard)
	case *gzip.Writer:
		pw.Reset(io.Discard)
	}
	pool.Put(w)

	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func skipStatus(code int) bool {
	return code == http.StatusNoContent ||
		code == http.StatusNotModified ||
		code == http.StatusPartialContent
}

func skipContentType(ct string, excludes map[string]bool) bool {
	if ct == "" {
		return false
	}
	ct = strings.ToLower(ct)
	if strings.Contains(ct, "text/event-stream") ||
		strings.Contains(ct, "application/grpc") ||
		strings.Contains(ct, "application/octet-stream") {
		return true
	}
	for excluded := range excludes {
		if strings.Contains(ct, excluded) {
			return true
		}
	}
	return false
}

// Writer pools are shared per level across middleware instances.
var (
	gzipPools   = make(map[int]*sync.Pool)
	brotliPools = make(map[int]*sync.Pool)
	poolsMu     sync.Mutex
)

func gzipPool(level int) *sync.Pool {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	if p, ok := gzipPools[level]; ok {
		return p
	}
	p := &sync.Pool{New: func() any {
		w, err := gzip.NewWriterLevel(io.Discard, level)
		if err != nil {
			w = gzip.NewWriter(io.Discard)
		}
		return w
	}}
	gzipPools[level] = p
	return p
}

func brotliPool(level int) *sync.Pool {
	poolsMu.Lock()
	defer poolsMu.Unlock()
	if p, ok := brotliPools[level]; ok {
		return p
	}
	p := &sync.Pool{New: func() any {
		return brotli.NewWriterLevel(io.Discard, level)
	}}
	brotliPools[level] = p
	return p
}
