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

package binding

// Validator checks bound values. *validation.Validator satisfies it.
type Validator interface {
	Validate(v any) error
}

// Option configures binding.
type Option func(*config)

type config struct {
	validator       Validator
	disallowUnknown bool
	maxBytes        int64
}

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithValidator validates the value after binding.
func WithValidator(v Validator) Option {
	return func(cfg *config) {
		cfg.validator = v
	}
}

// WithDisallowUnknown rejects body fields that have no destination.
// It applies to JSON, YAML, TOML, MessagePack and protobuf bodies.
func WithDisallowUnknown() Option {
	return func(cfg *config) {
		cfg.disallowUnknown = true
	}
}

// WithMaxBytes limits the body size. Zero or less means no limit.
func WithMaxBytes(n int64) Option {
	return func(cfg *config) {
		cfg.maxBytes = n
	}
}
