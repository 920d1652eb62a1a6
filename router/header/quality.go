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
	"slices"
	"strings"
)

// QualifiedValue is a header candidate with its quality factor resolved.
// Params never contains q.
type QualifiedValue struct {
	Token  string
	Params Parameters
	Q      float64

	// weight is Q in thousandths, used for exact comparisons.
	weight int
}

// Weight returns the quality factor in thousandths (0..1000).
func (v QualifiedValue) Weight() int {
	return v.weight
}

// String returns the token followed by its parameters sorted as strings,
// for example "text/html;a=b;version=2".
func (v QualifiedValue) String() string {
	if len(v.Params) == 0 {
		return v.Token
	}
	parts := make([]string, len(v.Params))
	for i, p := range v.Params {
		parts[i] = p.Name + "=" + p.Value
	}
	slices.Sort(parts)
	return v.Token + ";" + strings.Join(parts, ";")
}

// SplitList splits comma separated header lines into trimmed, non-empty elements.
// Each argument may be a whole header line or a single element.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// SortByQuality parses every candidate and orders them by descending quality.
// Candidates with equal quality keep their relative order. A missing q means 1.
//
// Any malformed candidate or quality factor fails the whole call.
//
//	vs, _ := header.SortByQuality("text/html;q=0.2,text/xml")
//	// vs[0].Token == "text/xml", vs[1].Token == "text/html"
func SortByQuality(values ...string) ([]QualifiedValue, error) {
	elements := SplitList(values...)
	if len(elements) == 0 {
		return []QualifiedValue{}, nil
	}

	out := make([]QualifiedValue, 0, len(elements))
	for _, element := range elements {
		v, err := ParseValueAndParameters(element)
		if err != nil {
			return nil, err
		}

		weight := 1000
		if raw, ok := v.Params.Get("q"); ok {
			if weight = parseQuality(raw); weight < 0 {
				return nil, &SyntaxError{Input: element, Err: ErrInvalidQuality}
			}
		}

		out = append(out, QualifiedValue{
			Token:  v.Token,
			Params: v.Params.Without("q"),
			Q:      float64(weight) / 1000,
			weight: weight,
		})
	}

	slices.SortStableFunc(out, func(a, b QualifiedValue) int {
		return b.weight - a.weight
	})
	return out, nil
}

// parseQuality parses a quality value in thousandths.
// It accepts "0", "0.d", "0.dd", "0.ddd", "1" and "1." followed by one to
// three zeros. It returns -1 for anything else.
func parseQuality(s string) int {
	if len(s) == 0 || len(s) > 5 {
		return -1
	}

	switch s[0] {
	case '1':
		if len(s) == 1 {
			return 1000
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		for i := 2; i < len(s); i++ {
			if s[i] != '0' {
				return -1
			}
		}
		return 1000

	case '0':
		if len(s) == 1 {
			return 0
		}
		if len(s) < 3 || s[1] != '.' {
			return -1
		}
		result := 0
		multiplier := 100
		for i := 2; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return -1
			}
			result += int(s[i]-'0') * multiplier
			multiplier /= 10
		}
		return result
	}

	return -1
}
