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

package header

import (
	"net/http"
	"strings"
)

// shortMediaTypes maps offer shorthands to full media types.
var shortMediaTypes = map[string]string{
	"html":       "text/html",
	"json":       "application/json",
	"xml":        "application/xml",
	"yaml":       "application/yaml",
	"text":       "text/plain",
	"txt":        "text/plain",
	"problem":    "application/problem+json",
	"jsonapi":    "application/vnd.api+json",
	"png":        "image/png",
	"jpg":        "image/jpeg",
	"jpeg":       "image/jpeg",
	"gif":        "image/gif",
	"webp":       "image/webp",
	"svg":        "image/svg+xml",
	"css":        "text/css",
	"js":         "application/javascript",
	"javascript": "application/javascript",
	"pdf":        "application/pdf",
}

// NormalizeMediaType lowercases m and expands shorthands such as "json".
func NormalizeMediaType(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if full, ok := shortMediaTypes[m]; ok {
		return full
	}
	return m
}

// Accepts returns the offer that best satisfies the Accept header of r.
//
// Offers may be full media types or shorthands ("json", "html"). The offer
// matched by the range with the highest quality wins, then the one matched
// most specifically; offers listed earlier win ties. Ranges with q=0 never
// match. Without an Accept header the first offer is returned.
// When nothing is acceptable the result is "".
//
//	// Accept: text/html, application/json;q=0.8
//	header.Accepts(r, "json", "html") // "html", nil
func Accepts(r *http.Request, offers ...string) (string, error) {
	if len(offers) == 0 {
		return "", nil
	}

	lines := r.Header.Values("Accept")
	if len(SplitList(lines...)) == 0 {
		return offers[0], nil
	}

	ranges, err := SortByQuality(lines...)
	if err != nil {
		return "", err
	}
	return bestOffer(ranges, offers), nil
}

func bestOffer(ranges []QualifiedValue, offers []string) string {
	normalized := make([]string, len(offers))
	for i, o := range offers {
		normalized[i] = NormalizeMediaType(o)
	}

	best, bestWeight, bestSpecificity := -1, 0, 0
	for i, offer := range normalized {
		for _, rng := range ranges {
			if rng.weight == 0 {
				continue
			}
			specificity := matchMediaType(offer, rng.Token)
			if specificity == 0 {
				continue
			}
			if best < 0 || rng.weight > bestWeight || (rng.weight == bestWeight && specificity > bestSpecificity) {
				best, bestWeight, bestSpecificity = i, rng.weight, specificity
			}
		}
	}

	if best < 0 {
		return ""
	}
	return offers[best]
}

// matchMediaType reports how specifically the range matches offer:
// 3 for an exact match, 2 for type/*, 1 for */*, 0 for no match.
func matchMediaType(offer, mediaRange string) int {
	offerType, offerSub := splitMediaType(offer)
	rangeType, rangeSub := splitMediaType(mediaRange)

	switch {
	case rangeType == "*" && rangeSub == "*":
		return 1
	case rangeType == offerType && rangeSub == "*":
		return 2
	case rangeType == offerType && rangeSub == offerSub:
		return 3
	}
	return 0
}

func splitMediaType(m string) (string, string) {
	m, _, _ = strings.Cut(m, ";")
	m = strings.ToLower(strings.TrimSpace(m))
	if typ, sub, ok := strings.Cut(m, "/"); ok {
		return typ, sub
	}
	return m, "*"
}

// AcceptsLanguages returns the offered language that best satisfies the
// Accept-Language header of r. A range also matches offers that share its
// primary subtag, so "en" accepts "en-US".
func AcceptsLanguages(r *http.Request, offers ...string) (string, error) {
	return acceptsToken(r, "Accept-Language", offers, true)
}

// AcceptsEncodings returns the offered content coding that best satisfies
// the Accept-Encoding header of r.
func AcceptsEncodings(r *http.Request, offers ...string) (string, error) {
	return acceptsToken(r, "Accept-Encoding", offers, false)
}

// AcceptsCharsets returns the offered charset that best satisfies the
// Accept-Charset header of r.
func AcceptsCharsets(r *http.Request, offers ...string) (string, error) {
	return acceptsToken(r, "Accept-Charset", offers, false)
}

func acceptsToken(r *http.Request, name string, offers []string, prefixes bool) (string, error) {
	if len(offers) == 0 {
		return "", nil
	}

	lines := r.Header.Values(name)
	if len(SplitList(lines...)) == 0 {
		return offers[0], nil
	}

	ranges, err := SortByQuality(lines...)
	if err != nil {
		return "", err
	}

	best, bestWeight := -1, 0
	for i, offer := range offers {
		w := tokenWeight(ranges, strings.ToLower(strings.TrimSpace(offer)), prefixes)
		if w > bestWeight {
			best, bestWeight = i, w
		}
	}

	if best < 0 {
		return "", nil
	}
	return offers[best], nil
}

// tokenWeight returns the weight of the most specific range matching offer:
// an exact token beats a language prefix, which beats "*". An explicit q=0
// therefore refuses an offer even when "*" would accept it.
func tokenWeight(ranges []QualifiedValue, offer string, prefixes bool) int {
	const (
		none = iota
		wildcard
		prefix
		exact
	)
	rank, weight := none, 0
	for _, rng := range ranges {
		token := strings.ToLower(rng.Token)
		r := none
		switch {
		case token == offer:
			r = exact
		case prefixes && (strings.HasPrefix(offer, token+"-") || strings.HasPrefix(token, offer+"-")):
			r = prefix
		case token == "*":
			r = wildcard
		}
		if r > rank || (r == rank && r != none && rng.weight > weight) {
			rank, weight = r, rng.weight
		}
	}
	return weight
}
