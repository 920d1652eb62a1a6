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

package requestid

import (
	"context"
	"crypto/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"rivaas.dev/web/router"
	"rivaas.dev/web/router/middleware"
)

// DefaultHeader is the default request ID header.
const DefaultHeader = "X-Request-ID"

// maxClientIDLength bounds client supplied IDs.
const maxClientIDLength = 128

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    DefaultHeader,
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

func generateUUIDv7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ulidEntropy is shared by all requests; ulid.Monotonic is not safe for
// concurrent use on its own.
var (
	ulidEntropy     = ulid.Monotonic(rand.Reader, 0)
	ulidEntropyLock sync.Mutex
)

func generateULID() string {
	ulidEntropyLock.Lock()
	defer ulidEntropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// Middleware assigns request IDs.
type Middleware struct {
	cfg *config
}

// New returns a middleware that adds a unique request ID to each request.
//
// Custom header name:
//
//	requestid.New(requestid.WithHeader("X-Correlation-ID"))
//
// Disable client IDs:
//
//	requestid.New(requestid.WithAllowClientID(false))
func New(opts ...Option) *Middleware {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Middleware{cfg: cfg}
}

// Process implements router.Middleware.
func (m *Middleware) Process(r *http.Request, next router.Handler) (*router.Response, error) {
	var requestID string
	if m.cfg.allowClientID {
		requestID = r.Header.Get(m.cfg.headerName)
		if !validClientID(requestID) {
			requestID = ""
		}
	}
	if requestID == "" {
		requestID = m.cfg.generator()
	}

	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, requestID)
	resp, err := next.Handle(r.WithContext(ctx))
	if resp != nil {
		resp.Header().Set(m.cfg.headerName, requestID)
	}
	return resp, err
}

// validClientID accepts short IDs made of visible ASCII characters.
func validClientID(id string) bool {
	if id == "" || len(id) > maxClientIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// Get retrieves the request ID of r. It returns "" if none has been set.
func Get(r *http.Request) string {
	return FromContext(r.Context())
}

// FromContext retrieves the request ID from ctx.
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
