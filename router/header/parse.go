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
	"regexp"
	"slices"
	"strings"
)

// paramPattern matches one parameter at the start of the input, including the
// trailing separator. Quoted values may hold anything but a double quote;
// bare values are RFC 7230 tokens.
var paramPattern = regexp.MustCompile(`^\s*(\w+)\s*=\s*(?:"([^"]+)"|([!#$%&'*+.^` + "`" + `|~\w-]+))\s*(?:;|$)`)

// tokenPattern matches values that can be serialized without quotes.
var tokenPattern = regexp.MustCompile(`^[!#$%&'*+.^` + "`" + `|~\w-]+$`)

// Parameter is a single name=value pair.
type Parameter struct {
	Name  string
	Value string
}

// String returns name=value, quoting the value when it is not a token.
func (p Parameter) String() string {
	if tokenPattern.MatchString(p.Value) {
		return p.Name + "=" + p.Value
	}
	return p.Name + `="` + p.Value + `"`
}

// Parameters is an ordered set of header parameters with unique names.
// Names are case-sensitive.
type Parameters []Parameter

// Get returns the value of the named parameter.
func (ps Parameters) Get(name string) (string, bool) {
	for _, p := range ps {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing parameter in place or appends a new one.
func (ps *Parameters) Set(name, value string) {
	for i := range *ps {
		if (*ps)[i].Name == name {
			(*ps)[i].Value = value
			return
		}
	}
	*ps = append(*ps, Parameter{Name: name, Value: value})
}

// Without returns a copy of ps with the named parameter removed.
func (ps Parameters) Without(name string) Parameters {
	return slices.DeleteFunc(slices.Clone(ps), func(p Parameter) bool {
		return p.Name == name
	})
}

// Map returns the parameters as a map.
func (ps Parameters) Map() map[string]string {
	m := make(map[string]string, len(ps))
	for _, p := range ps {
		m[p.Name] = p.Value
	}
	return m
}

// String serializes the parameters in order, separated by semicolons.
// Parsing the result yields the same parameters.
func (ps Parameters) String() string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ";")
}

// Value is a parsed header value: a primary token and its parameters.
type Value struct {
	Token  string
	Params Parameters
}

// IsZero reports whether the value came from empty input.
func (v Value) IsZero() bool {
	return v.Token == "" && len(v.Params) == 0
}

// String serializes the value in canonical form.
func (v Value) String() string {
	if len(v.Params) == 0 {
		return v.Token
	}
	return v.Token + ";" + v.Params.String()
}

// ParseValueAndParameters splits raw into its primary token and parameters,
// as in "text/html;level=1;q=0.5". Empty input yields the zero Value.
func ParseValueAndParameters(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{}, nil
	}

	token, rest, found := strings.Cut(raw, ";")
	token = strings.TrimSpace(token)
	if token == "" {
		return Value{}, &SyntaxError{Input: raw, Err: ErrSyntax}
	}
	if !found {
		return Value{Token: token}, nil
	}

	params, err := ParseParameters(rest)
	if err != nil {
		return Value{}, err
	}
	return Value{Token: token, Params: params}, nil
}

// ParseParameters parses a semicolon separated list of name=value pairs.
// A repeated name keeps its first position and takes the later value.
func ParseParameters(raw string) (Parameters, error) {
	rest := strings.TrimSpace(raw)
	if rest == "" {
		return nil, nil
	}

	var params Parameters
	for rest != "" {
		m := paramPattern.FindStringSubmatchIndex(rest)
		if m == nil {
			return nil, &SyntaxError{Input: rest, Err: ErrSyntax}
		}

		name := rest[m[2]:m[3]]
		var value string
		if m[4] >= 0 {
			value = rest[m[4]:m[5]]
		} else {
			value = rest[m[6]:m[7]]
		}
		params.Set(name, value)

		rest = rest[m[1]:]
	}
	return params, nil
}
