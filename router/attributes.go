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

package router

import (
	"context"
	"maps"
	"net/http"
)

type attributesKey struct{}

// attributes is never mutated once stored in a context.
type attributes map[string]any

func attributesOf(r *http.Request) attributes {
	if attrs, ok := r.Context().Value(attributesKey{}).(attributes); ok {
		return attrs
	}
	return nil
}

// WithAttribute returns a shallow copy of r whose attribute bag holds key=value
// in addition to the attributes already present. The original request and its
// bag are left unchanged.
func WithAttribute(r *http.Request, key string, value any) *http.Request {
	return WithAttributes(r, map[string]any{key: value})
}

// WithAttributes is like [WithAttribute] for several values at once.
func WithAttributes(r *http.Request, values map[string]any) *http.Request {
	if len(values) == 0 {
		return r
	}
	current := attributesOf(r)
	next := make(attributes, len(current)+len(values))
	maps.Copy(next, current)
	maps.Copy(next, values)
	return r.WithContext(context.WithValue(r.Context(), attributesKey{}, next))
}

// Attribute returns the attribute stored under key, or nil.
func Attribute(r *http.Request, key string) any {
	return attributesOf(r)[key]
}

// LookupAttribute returns the attribute stored under key and whether it exists.
func LookupAttribute(r *http.Request, key string) (any, bool) {
	v, ok := attributesOf(r)[key]
	return v, ok
}

// Attributes returns a copy of the request's attribute bag.
func Attributes(r *http.Request) map[string]any {
	return maps.Clone(map[string]any(attributesOf(r)))
}
