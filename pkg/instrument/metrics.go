// Package instrument collects Prometheus metrics for route generation.
package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/fsroutes/pkg/router"
)

// Config configures the generation metrics.
type Config struct {
	// Namespace is the metrics namespace (default: "fsroutes").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for generation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures Metrics.
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
		Namespace: "fsroutes",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records route generations. It implements router.Observer.
//
// Metrics collected:
//   - fsroutes_generations_total: Counter of generations by result (success, error)
//   - fsroutes_modules_total: Counter of discovered modules by status (routed, ignored)
//   - fsroutes_routes: Gauge of routes produced by the last successful generation
//   - fsroutes_spilled_routes_total: Counter of routes nested above their directory parent
//   - fsroutes_generate_duration_seconds: Histogram of generation duration
type Metrics struct {
	generations *prometheus.CounterVec
	modules     *prometheus.CounterVec
	routes      prometheus.Gauge
	spilled     prometheus.Counter
	duration    prometheus.Histogram
}

var _ router.Observer = (*Metrics)(nil)

// New registers the generation metrics and returns a Metrics.
// It panics if the metrics are already registered with the registry.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "generations_total",
			Help:        "Total number of route generations",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		modules: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "modules_total",
			Help:        "Total number of discovered modules by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of routes produced by the last successful generation",
			ConstLabels: config.ConstLabels,
		}),

		spilled: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "spilled_routes_total",
			Help:        "Total number of dynamic routes nested above their directory parent",
			ConstLabels: config.ConstLabels,
		}),

		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "generate_duration_seconds",
			Help:        "Route generation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// ObserveGenerate records one generation.
func (m *Metrics) ObserveGenerate(stats router.Stats, duration time.Duration, err error) {
	m.duration.Observe(duration.Seconds())
	m.modules.WithLabelValues("routed").Add(float64(stats.Modules))
	m.modules.WithLabelValues("ignored").Add(float64(stats.Ignored))

	if err != nil {
		m.generations.WithLabelValues("error").Inc()
		return
	}

	m.generations.WithLabelValues("success").Inc()
	m.routes.Set(float64(stats.Routes))
	m.spilled.Add(float64(stats.Spilled))
}
