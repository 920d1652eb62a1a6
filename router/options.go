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

// Option configures a [Dispatcher].
type Option func(*Dispatcher)

// WithFallback sets the handler invoked when every middleware delegates.
// A nil handler is ignored.
//
// Example:
//
//	d := router.MustNewDispatcher(mws, router.WithFallback(router.HandlerFunc(spa)))
func WithFallback(h Handler) Option {
	return func(d *Dispatcher) {
		if h != nil {
			d.fallback = h
		}
	}
}

// WithResponseFactory sets the factory used by the default fallback.
// It has no effect when [WithFallback] is also given.
func WithResponseFactory(f ResponseFactory) Option {
	return func(d *Dispatcher) {
		if f != nil {
			d.factory = f
		}
	}
}
