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

	"rivaas.dev/web/router/header"
)

// Offer pairs a media type with the formatter that produces it.
type Offer struct {
	MediaType string
	Formatter Formatter
}

// Negotiated picks a formatter from the Accept header of the request.
// The first offer is used when the header is absent, malformed, or
// matches nothing.
type Negotiated struct {
	offers []Offer
	types  []string
}

// NewNegotiated creates a negotiating formatter. Without offers it
// behaves like Simple.
func NewNegotiated(offers ...Offer) *Negotiated {
	if len(offers) == 0 {
		simple := NewSimple()
		offers = []Offer{{MediaType: simple.MediaType(), Formatter: simple}}
	}
	types := make([]string, len(offers))
	for i, o := range offers {
		types[i] = o.MediaType
	}
	return &Negotiated{offers: offers, types: types}
}

// DefaultNegotiated offers RFC 9457 problem details (the default),
// JSON:API, and simple JSON.
func DefaultNegotiated(baseURL string) *Negotiated {
	problem, jsonapi, simple := NewRFC9457(baseURL), NewJSONAPI(), NewSimple()
	return NewNegotiated(
		Offer{MediaType: problem.MediaType(), Formatter: problem},
		Offer{MediaType: jsonapi.MediaType(), Formatter: jsonapi},
		Offer{MediaType: simple.MediaType(), Formatter: simple},
	)
}

// Format delegates to the formatter the client prefers.
func (n *Negotiated) Format(req *http.Request, err error) Response {
	return n.Select(req).Format(req, err)
}

// Select returns the formatter chosen for req.
func (n *Negotiated) Select(req *http.Request) Formatter {
	chosen, acceptErr := header.Accepts(req, n.types...)
	if acceptErr != nil || chosen == "" {
		return n.offers[0].Formatter
	}
	for i, t := range n.types {
		if t == chosen {
			return n.offers[i].Formatter
		}
	}
	return n.offers[0].Formatter
}
