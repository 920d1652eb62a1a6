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

package errors

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// RFC9457 formats errors as RFC 9457 Problem Details.
type RFC9457 struct {
	// BaseURL is prepended to error codes to create problem type URIs.
	BaseURL string

	// TypeResolver maps errors to problem type URIs.
	TypeResolver func(err error) string

	// StatusResolver overrides StatusOf.
	StatusResolver func(err error) int

	// ErrorIDGenerator generates IDs for error correlation. Defaults to UUIDv4.
	ErrorIDGenerator func() string

	// DisableErrorID disables the error_id extension.
	DisableErrorID bool
}

// ProblemDetail is an RFC 9457 problem detail object.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

// MarshalJSON inlines extensions. Extensions cannot override the
// standard members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}
	for k, v := range p.Extensions {
		switch k {
		case "type", "title", "status", "detail", "instance":
		default:
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// MediaType returns application/problem+json.
func (f *RFC9457) MediaType() string {
	return "application/problem+json"
}

// Format converts err into a problem detail. Codes and details exposed by
// the error become the "code" and "errors" extensions.
func (f *RFC9457) Format(req *http.Request, err error) Response {
	status := resolveStatus(f.StatusResolver, err)

	p := ProblemDetail{
		Type:       f.problemType(err),
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     err.Error(),
		Instance:   req.URL.Path,
		Extensions: make(map[string]any),
	}

	if !f.DisableErrorID {
		if f.ErrorIDGenerator != nil {
			p.Extensions["error_id"] = f.ErrorIDGenerator()
		} else {
			p.Extensions["error_id"] = generateErrorID()
		}
	}
	if details, ok := detailsOf(err); ok {
		p.Extensions["errors"] = details
	}
	if code, ok := codeOf(err); ok {
		p.Extensions["code"] = code
	}

	return Response{
		Status:      status,
		ContentType: "application/problem+json; charset=utf-8",
		Body:        p,
	}
}

func (f *RFC9457) problemType(err error) string {
	if f.TypeResolver != nil {
		return f.TypeResolver(err)
	}
	if code, ok := codeOf(err); ok {
		if f.BaseURL != "" {
			return f.BaseURL + "/" + code
		}
		return code
	}
	return "about:blank"
}

func generateErrorID() string {
	return "err-" + uuid.NewString()
}
