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

package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
)

// Default histogram buckets.
var (
	// DefaultDurationBuckets are boundaries for request duration in seconds.
	DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultSizeBuckets are boundaries for response size in bytes.
	DefaultSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

// DefaultMaxCustomMetrics caps the number of custom metrics a recorder creates.
const DefaultMaxCustomMetrics = 1000

// Option configures a [Recorder].
type Option func(*config)

type config struct {
	namespace        string
	serviceName      string
	registry         *prometheus.Registry
	durationBuckets  []float64
	sizeBuckets      []float64
	maxCustomMetrics int
	processMetrics   bool
	logger           *slog.Logger
	errs             []error
}

func defaultConfig() *config {
	return &config{
		durationBuckets:  DefaultDurationBuckets,
		sizeBuckets:      DefaultSizeBuckets,
		maxCustomMetrics: DefaultMaxCustomMetrics,
	}
}

func (c *config) validate() error {
	if len(c.durationBuckets) == 0 {
		c.errs = append(c.errs, errors.New("metrics: duration buckets cannot be empty"))
	}
	if len(c.sizeBuckets) == 0 {
		c.errs = append(c.errs, errors.New("metrics: size buckets cannot be empty"))
	}
	if c.maxCustomMetrics < 0 {
		c.errs = append(c.errs, fmt.Errorf("metrics: max custom metrics must be non-negative, got %d", c.maxCustomMetrics))
	}
	return errors.Join(c.errs...)
}

// WithNamespace prefixes every metric name with namespace and an underscore.
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithServiceName adds a constant service label to the HTTP metrics.
func WithServiceName(name string) Option {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithRegistry registers metrics with registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithDurationBuckets sets the request duration histogram boundaries.
func WithDurationBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.durationBuckets = buckets
	}
}

// WithSizeBuckets sets the response size histogram boundaries.
func WithSizeBuckets(buckets ...float64) Option {
	return func(c *config) {
		c.sizeBuckets = buckets
	}
}

// WithMaxCustomMetrics limits how many custom metrics may be created.
// Zero removes the limit.
func WithMaxCustomMetrics(limit int) Option {
	return func(c *config) {
		c.maxCustomMetrics = limit
	}
}

// WithProcessMetrics registers the Go runtime and process collectors.
func WithProcessMetrics() Option {
	return func(c *config) {
		c.processMetrics = true
	}
}

// WithLogger logs failures to record custom metrics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// MiddlewareOption configures the middleware returned by [Recorder.Middleware].
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	filter *pathFilter
}

// WithExcludePaths skips metrics for the exact paths given.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.filter.addPaths(paths...)
	}
}

// WithExcludePrefixes skips metrics for paths under the given prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.filter.addPrefixes(prefixes...)
	}
}

// WithExcludePatterns skips metrics for paths matching any of the regular
// expressions. Patterns that do not compile are ignored.
func WithExcludePatterns(patterns ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, pattern := range patterns {
			compiled, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			c.filter.addPatterns(compiled)
		}
	}
}
