// Package telemetry provides dispatch observers for Prometheus metrics
// and OpenTelemetry tracing. Both attach to a router through
// dispatch.WithObserver, keeping the core free of telemetry concerns.
package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wayfind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "wayfind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a dispatch.Observer recording Prometheus metrics.
//
// Metrics collected:
//   - wayfind_dispatches_total: counter of dispatches by pattern and status
//   - wayfind_dispatch_duration_seconds: histogram of dispatch duration by pattern
//   - wayfind_cache_hits_total: counter of result-cache hits
//   - wayfind_unmatched_total: counter of dispatches no route accepted
type Metrics struct {
	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	unmatched        prometheus.Counter
}

// defaultMetrics is the singleton observer bound to the default
// registry. Collectors can only be registered there once, so every
// Prometheus() call without an explicit registry shares this instance.
var (
	defaultMetrics   *Metrics
	defaultMetricsMu sync.Mutex
)

// Prometheus creates a Prometheus metrics observer.
//
// Without WithRegistry the observer binds to the default registry,
// where collectors can only exist once; repeated calls then return the
// same shared instance (and later calls' options are ignored). Pass an
// explicit registry to get independent collectors.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	r := dispatch.New(
//	    dispatch.WithObserver(telemetry.Prometheus(
//	        telemetry.WithRegistry(reg),
//	        telemetry.WithNamespace("myapp"),
//	    )),
//	)
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if config.Registry == prometheus.DefaultRegisterer {
		defaultMetricsMu.Lock()
		defer defaultMetricsMu.Unlock()
		if defaultMetrics == nil {
			defaultMetrics = newMetrics(config)
		}
		return defaultMetrics
	}
	return newMetrics(config)
}

func newMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of navigation dispatches",
			ConstLabels: config.ConstLabels,
		}, []string{"pattern", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Navigation dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"pattern"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cache_hits_total",
			Help:        "Total number of result-cache hits",
			ConstLabels: config.ConstLabels,
		}),

		unmatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unmatched_total",
			Help:        "Total number of dispatches no route accepted",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveDispatch implements dispatch.Observer.
func (m *Metrics) ObserveDispatch(result dispatch.DispatchResult) {
	// The pattern label is bounded by the route table, never by user
	// input; unmatched dispatches collapse into one label value.
	pattern := result.Pattern
	if pattern == "" {
		pattern = "unmatched"
	}

	status := "success"
	if result.Err != nil {
		status = "error"
	}

	m.dispatchesTotal.WithLabelValues(pattern, status).Inc()
	m.dispatchDuration.WithLabelValues(pattern).Observe(result.Duration.Seconds())

	if result.CacheHit {
		m.cacheHits.Inc()
	}
	if !result.Matched {
		m.unmatched.Inc()
	}
}
