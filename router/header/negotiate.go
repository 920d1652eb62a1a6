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
	"slices"
	"strings"
)

// SortAcceptTypes orders media ranges the way a server should consider them.
//
// Among candidates with equal quality, a range with more parameters beats one
// with fewer when neither contains a wildcard; otherwise "type/*" loses to a
// concrete type and "*/*" loses to "type/*". Remaining ties keep header
// order. Each result is the media type followed by its non-q parameters,
// sorted as strings.
func SortAcceptTypes(values ...string) ([]string, error) {
	qualified, err := SortByQuality(values...)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(qualified, compareAcceptTypes)

	out := make([]string, len(qualified))
	for i, v := range qualified {
		out[i] = v.String()
	}
	return out, nil
}

// SortedAcceptTypes sorts every Accept header line of r.
func SortedAcceptTypes(r *http.Request) ([]string, error) {
	return SortAcceptTypes(r.Header.Values("Accept")...)
}

func compareAcceptTypes(a, b QualifiedValue) int {
	if a.weight != b.weight {
		return b.weight - a.weight
	}

	wildA := strings.Contains(a.Token, "*")
	wildB := strings.Contains(b.Token, "*")
	if !wildA && !wildB {
		return len(b.Params) - len(a.Params)
	}

	endA := strings.HasSuffix(a.Token, "*")
	endB := strings.HasSuffix(b.Token, "*")
	if endA != endB {
		if endA {
			return 1
		}
		return -1
	}

	startA := strings.HasPrefix(a.Token, "*")
	startB := strings.HasPrefix(b.Token, "*")
	switch {
	case startA == startB:
		return 0
	case startA:
		return 1
	default:
		return -1
	}
}
