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
	"maps"

	"rivaas.dev/web/router"
)

// Outcome classifies a [MatchResult].
type Outcome uint8

const (
	// NoMatch means no route satisfied method, host and path.
	NoMatch Outcome = iota
	// Matched means a route matched and has a handler.
	Matched
	// NoHandler means a route matched but has no handler.
	NoHandler
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case NoHandler:
		return "no handler"
	default:
		return "no match"
	}
}

// Reason tells why a route did not match.
type Reason uint8

const (
	// ReasonNone is reported when the group has no routes.
	ReasonNone Reason = iota
	MethodMismatch
	HostMismatch
	PathMismatch
)

func (r Reason) String() string {
	switch r {
	case MethodMismatch:
		return "method mismatch"
	case HostMismatch:
		return "host mismatch"
	case PathMismatch:
		return "path mismatch"
	default:
		return "no routes"
	}
}

// MatchResult is the result of [Group.Match].
//
// For [Matched] results Handler, Params and Name are set. For [NoHandler]
// only Route and Params are meaningful. For [NoMatch] only Reason is.
type MatchResult struct {
	Outcome Outcome
	Reason  Reason
	Route   *Route
	Handler router.Middleware
	// Params holds the route parameters overlaid with the captured values.
	Params map[string]string
	Name   string
}

// IsMatched reports whether the result carries a handler to dispatch to.
func (m MatchResult) IsMatched() bool {
	return m.Outcome == Matched
}

// Err returns the result as an error: nil for [Matched], a [*NoMatchError]
// or a [*NoHandlerError] otherwise.
func (m MatchResult) Err() error {
	switch m.Outcome {
	case Matched:
		return nil
	case NoHandler:
		return &NoHandlerError{Route: m.Route}
	default:
		return &NoMatchError{Reason: m.Reason}
	}
}

func matched(rt *Route, captured map[string]string) MatchResult {
	params := maps.Clone(rt.params)
	if params == nil {
		params = make(map[string]string, len(captured))
	}
	maps.Copy(params, captured)

	outcome := Matched
	if rt.handler == nil {
		outcome = NoHandler
	}
	return MatchResult{
		Outcome: outcome,
		Route:   rt,
		Handler: rt.handler,
		Params:  params,
		Name:    rt.name,
	}
}
