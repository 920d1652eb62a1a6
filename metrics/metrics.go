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
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"rivaas.dev/web/router"
)

const maxMetricNameLength = 255

var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Prefixes reserved for the metrics of this package and Prometheus itself.
var reservedPrefixes = []string{"__", "http_", "router_"}

// ErrInvalidMetricName is returned for custom metric names that Prometheus
// would reject or that use a reserved prefix.
var ErrInvalidMetricName = errors.New("invalid metric name")

// LimitError is returned when creating a custom metric would exceed the
// configured limit.
type LimitError struct {
	Name  string
	Limit int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("metrics limit reached: cannot create %q (limit %d)", e.Name, e.Limit)
}

func validateMetricName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidMetricName)
	}
	if len(name) > maxMetricNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrInvalidMetricName, len(name), maxMetricNameLength)
	}
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q must start with a letter and contain only letters, digits and underscores", ErrInvalidMetricName, name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("%w: %q uses reserved prefix %q", ErrInvalidMetricName, name, prefix)
		}
	}
	return nil
}

// Recorder owns a Prometheus registry and the HTTP request metrics.
// All methods are safe for concurrent use.
type Recorder struct {
	cfg      *config
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.HistogramVec
	inFlight prometheus.Gauge

	customMu   sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	failures   atomic.Int64
}

// New creates a recorder and registers the HTTP metrics.
func New(opts ...Option) (*Recorder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	if cfg.logger == nil {
		cfg.logger = router.NoopLogger()
	}

	var constLabels prometheus.Labels
	if cfg.serviceName != "" {
		constLabels = prometheus.Labels{"service": cfg.serviceName}
	}
	labels := []string{"method", "route", "status"}

	r := &Recorder{
		cfg:      cfg,
		registry: cfg.registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: constLabels,
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			ConstLabels: constLabels,
			Buckets:     cfg.durationBuckets,
		}, labels),
		size: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.namespace,
			Name:        "http_response_size_bytes",
			Help:        "HTTP response body size in bytes.",
			ConstLabels: constLabels,
			Buckets:     cfg.sizeBuckets,
		}, labels),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests being served.",
			ConstLabels: constLabels,
		}),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	collectorsToRegister := []prometheus.Collector{r.requests, r.duration, r.size, r.inFlight}
	if cfg.processMetrics {
		collectorsToRegister = append(collectorsToRegister,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	for _, c := range collectorsToRegister {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// HTTPHandler serves the registry for use outside a dispatcher.
func (r *Recorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Handle implements router.Handler and renders the registry in the format
// negotiated from the Accept header, so the recorder can be mounted as a
// route handler.
func (r *Recorder) Handle(req *http.Request) (*router.Response, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}

	format := expfmt.Negotiate(req.Header)
	resp := router.NewResponse(http.StatusOK)
	enc := expfmt.NewEncoder(resp, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	if closer, ok := enc.(expfmt.Closer); ok {
		if err := closer.Close(); err != nil {
			return nil, fmt.Errorf("metrics: encode: %w", err)
		}
	}
	return resp.WithHeader("Content-Type", string(format)), nil
}

// CustomMetricFailures returns how many custom metric updates failed.
func (r *Recorder) CustomMetricFailures() int64 {
	return r.failures.Load()
}

// CustomMetricCount returns the number of custom metrics created.
func (r *Recorder) CustomMetricCount() int {
	r.customMu.RLock()
	defer r.customMu.RUnlock()
	return len(r.counters) + len(r.gauges) + len(r.histograms)
}

// IncrementCounter adds one to the named counter.
func (r *Recorder) IncrementCounter(name string, labels map[string]string) error {
	return r.AddCounter(name, 1, labels)
}

// AddCounter adds value to the named counter, creating it on first use.
// The label names seen on first use are fixed for the life of the metric.
func (r *Recorder) AddCounter(name string, value float64, labels map[string]string) error {
	vec, err := getOrCreate(r, r.counters, name, labels, func(names []string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: r.cfg.namespace,
			Name:      name,
			Help:      "Custom counter metric.",
		}, names)
	})
	if err != nil {
		return r.fail(name, err)
	}
	c, err := vec.GetMetricWith(labels)
	if err != nil {
		return r.fail(name, err)
	}
	if value < 0 {
		return r.fail(name, fmt.Errorf("counter %q cannot decrease", name))
	}
	c.Add(value)
	return nil
}

// SetGauge sets the named gauge, creating it on first use.
func (r *Recorder) SetGauge(name string, value float64, labels map[string]string) error {
	vec, err := getOrCreate(r, r.gauges, name, labels, func(names []string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: r.cfg.namespace,
			Name:      name,
			Help:      "Custom gauge metric.",
		}, names)
	})
	if err != nil {
		return r.fail(name, err)
	}
	g, err := vec.GetMetricWith(labels)
	if err != nil {
		return r.fail(name, err)
	}
	g.Set(value)
	return nil
}

// RecordHistogram observes value in the named histogram, creating it with
// the default Prometheus buckets on first use.
func (r *Recorder) RecordHistogram(name string, value float64, labels map[string]string) error {
	vec, err := getOrCreate(r, r.histograms, name, labels, func(names []string) *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: r.cfg.namespace,
			Name:      name,
			Help:      "Custom histogram metric.",
		}, names)
	})
	if err != nil {
		return r.fail(name, err)
	}
	h, err := vec.GetMetricWith(labels)
	if err != nil {
		return r.fail(name, err)
	}
	h.Observe(value)
	return nil
}

func (r *Recorder) fail(name string, err error) error {
	r.failures.Add(1)
	r.cfg.logger.Warn("custom metric update failed", "metric", name, "error", err)
	return err
}

// getOrCreate returns the vector stored under name in m, creating and
// registering it when missing.
func getOrCreate[V prometheus.Collector](r *Recorder, m map[string]V, name string, labels map[string]string, create func([]string) V) (V, error) {
	r.customMu.RLock()
	vec, ok := m[name]
	r.customMu.RUnlock()
	if ok {
		return vec, nil
	}

	var zero V
	if err := validateMetricName(name); err != nil {
		return zero, err
	}

	r.customMu.Lock()
	defer r.customMu.Unlock()

	if vec, ok := m[name]; ok {
		return vec, nil
	}
	if r.cfg.maxCustomMetrics > 0 && len(r.counters)+len(r.gauges)+len(r.histograms) >= r.cfg.maxCustomMetrics {
		return zero, &LimitError{Name: name, Limit: r.cfg.maxCustomMetrics}
	}

	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	slices.Sort(names)

	vec = create(names)
	if err := r.registry.Register(vec); err != nil {
		return zero, err
	}
	m[name] = vec
	return vec, nil
}

var _ router.Handler = (*Recorder)(nil)
