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

package route

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// defaultConstraint matches a single path segment.
const defaultConstraint = `[^/]+`

var paramNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// segment is either literal text or a named placeholder.
type segment struct {
	literal    string
	param      string
	constraint string
	check      *regexp.Regexp // anchored constraint, for reverse routing
}

func (s segment) isParam() bool {
	return s.param != ""
}

// Pattern is a compiled path template.
type Pattern struct {
	template string
	segments []segment
	re       *regexp.Regexp
	names    []string
	groups   []int // submatch index for each of names
}

// CompilePattern compiles template into a Pattern. See the package
// documentation for the template syntax.
func CompilePattern(template string) (*Pattern, error) {
	return compilePattern(template, nil)
}

// MustCompilePattern is like [CompilePattern] but panics on error.
func MustCompilePattern(template string) *Pattern {
	p, err := CompilePattern(template)
	if err != nil {
		panic(err)
	}
	return p
}

// compilePattern compiles template, letting overrides replace the
// constraint of the placeholders they name.
func compilePattern(template string, overrides map[string]string) (*Pattern, error) {
	segments, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var expr strings.Builder
	expr.WriteByte('^')

	p := &Pattern{template: template, segments: segments}
	for i := range p.segments {
		seg := &p.segments[i]
		if !seg.isParam() {
			expr.WriteString(regexp.QuoteMeta(seg.literal))
			continue
		}

		if seen[seg.param] {
			return nil, &PatternError{Template: template, Reason: fmt.Sprintf("placeholder %q used twice", seg.param)}
		}
		seen[seg.param] = true

		if c, ok := overrides[seg.param]; ok {
			seg.constraint = c
		}
		if seg.check, err = compileConstraint(template, seg.param, seg.constraint); err != nil {
			return nil, err
		}

		p.names = append(p.names, seg.param)
		fmt.Fprintf(&expr, "(?P<%s>(?:%s))", seg.param, seg.constraint)
	}
	expr.WriteByte('$')

	for name := range overrides {
		if !seen[name] {
			return nil, &PatternError{Template: template, Reason: fmt.Sprintf("constraint for unknown placeholder %q", name)}
		}
	}

	if p.re, err = regexp.Compile(expr.String()); err != nil {
		return nil, &PatternError{Template: template, Reason: "cannot compile", Err: err}
	}
	p.groups = make([]int, len(p.names))
	for i, name := range p.names {
		p.groups[i] = p.re.SubexpIndex(name)
	}
	return p, nil
}

func compileConstraint(template, name, constraint string) (*regexp.Regexp, error) {
	if constraint == "" {
		return nil, &PatternError{Template: template, Reason: fmt.Sprintf("empty constraint for %q", name)}
	}
	// The constraint must parse on its own, otherwise it could close the
	// surrounding group and leak into the rest of the pattern.
	if _, err := regexp.Compile(constraint); err != nil {
		return nil, &PatternError{Template: template, Reason: fmt.Sprintf("bad constraint for %q", name), Err: err}
	}
	re, err := regexp.Compile("^(?:" + constraint + ")$")
	if err != nil {
		return nil, &PatternError{Template: template, Reason: fmt.Sprintf("bad constraint for %q", name), Err: err}
	}
	for _, sub := range re.SubexpNames() {
		if sub != "" {
			return nil, &PatternError{Template: template, Reason: fmt.Sprintf("constraint for %q contains named group %q", name, sub)}
		}
	}
	return re, nil
}

// parseTemplate splits template into literal and placeholder segments.
// One leading slash is dropped.
func parseTemplate(template string) ([]segment, error) {
	rest := strings.TrimPrefix(template, "/")

	var segments []segment
	for rest != "" {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			segments = append(segments, segment{literal: rest})
			break
		}
		if open > 0 {
			segments = append(segments, segment{literal: rest[:open]})
		}

		end := closingBracket(rest, open)
		if end < 0 {
			return nil, &PatternError{Template: template, Reason: "unterminated placeholder"}
		}

		body := rest[open+1 : end]
		name, constraint, hasConstraint := strings.Cut(body, ":")
		if !paramNamePattern.MatchString(name) {
			return nil, &PatternError{Template: template, Reason: fmt.Sprintf("invalid placeholder name %q", name)}
		}
		if !hasConstraint {
			constraint = defaultConstraint
		}
		segments = append(segments, segment{param: name, constraint: constraint})

		rest = rest[end+1:]
	}
	return segments, nil
}

// closingBracket returns the index of the '>' closing the '<' at open,
// allowing balanced brackets inside the constraint.
func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Template returns the source template.
func (p *Pattern) Template() string {
	return p.template
}

// Names returns the placeholder names in template order.
func (p *Pattern) Names() []string {
	return append([]string(nil), p.names...)
}

// Match matches path against the pattern. One leading slash on path is
// ignored. The returned map holds a value for every placeholder and is nil
// when the path does not match.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	m := p.re.FindStringSubmatch(strings.TrimPrefix(path, "/"))
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(p.names))
	for i, name := range p.names {
		params[name] = m[p.groups[i]]
	}
	return params, true
}

// Build fills the placeholders from params and returns the path with a
// leading slash. Values are path-escaped after they pass their constraint.
// Build reports which params it consumed.
func (p *Pattern) Build(params map[string]string) (string, map[string]bool, error) {
	used := make(map[string]bool, len(p.names))

	var b strings.Builder
	b.WriteByte('/')
	for _, seg := range p.segments {
		if !seg.isParam() {
			b.WriteString(seg.literal)
			continue
		}

		val, ok := params[seg.param]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrMissingParameter, seg.param)
		}
		if !seg.check.MatchString(val) {
			return "", nil, fmt.Errorf("%w: %s=%q does not match %s", ErrParameterMismatch, seg.param, val, seg.constraint)
		}
		used[seg.param] = true
		b.WriteString(escapeParam(val))
	}
	return b.String(), used, nil
}

// escapeParam escapes a value for use in a path while keeping slashes that a
// constraint explicitly allowed.
func escapeParam(val string) string {
	parts := strings.Split(val, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// String returns the template.
func (p *Pattern) String() string {
	return p.template
}
