// Package metrics exposes Prometheus instrumentation for the Reflow
// runtime and live transport. Collection is opt-in: call Enable once at
// startup; before that every Record function is a no-op, so library code
// can instrument unconditionally.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "reflow").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to register with.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Option configures metrics collection.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "reflow",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// collectors holds the Prometheus metrics for Reflow.
type collectors struct {
	rendersTotal   prometheus.Counter
	renderDuration prometheus.Histogram
	eventsTotal    *prometheus.CounterVec
	eventDuration  prometheus.Histogram
	patchesSent    prometheus.Counter
	activeSessions prometheus.Gauge
	wsErrors       *prometheus.CounterVec
}

var (
	global   *collectors
	globalMu sync.Mutex
)

func initCollectors(config Config) *collectors {
	factory := promauto.With(config.Registry)

	return &collectors{
		rendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component render passes",
			ConstLabels: config.ConstLabels,
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of live events processed",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Live event processing duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Total number of HTML patches sent to clients",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of active live sessions",
			ConstLabels: config.ConstLabels,
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Enable initializes and registers the collectors. Subsequent calls are
// no-ops; the first configuration wins.
func Enable(opts ...Option) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = initCollectors(config)
	}
}

// RecordRender records a completed render pass and its duration.
func RecordRender(d time.Duration) {
	if global != nil {
		global.rendersTotal.Inc()
		global.renderDuration.Observe(d.Seconds())
	}
}

// RecordEvent records a processed live event.
func RecordEvent(event, status string, d time.Duration) {
	if global != nil {
		global.eventsTotal.WithLabelValues(event, status).Inc()
		global.eventDuration.Observe(d.Seconds())
	}
}

// RecordPatch records an HTML patch sent to a client.
func RecordPatch() {
	if global != nil {
		global.patchesSent.Inc()
	}
}

// RecordSessionOpen records a new live session.
func RecordSessionOpen() {
	if global != nil {
		global.activeSessions.Inc()
	}
}

// RecordSessionClose records a live session ending.
func RecordSessionClose() {
	if global != nil {
		global.activeSessions.Dec()
	}
}

// RecordWebSocketError records a WebSocket error by category. Keep the
// type coarse; it is a metric label.
func RecordWebSocketError(errorType string) {
	if global != nil {
		global.wsErrors.WithLabelValues(errorType).Inc()
	}
}
