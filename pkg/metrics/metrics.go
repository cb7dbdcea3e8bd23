// Package metrics exports runtime, binding, directive and render activity
// as Prometheus metrics.
//
// A Collector implements the observer interfaces of the reactive runtime,
// the binder, the directive applier and the element host, so one value
// can be passed to each of them:
//
//	c := metrics.New(metrics.WithRegistry(reg))
//	rt := reactive.New(reactive.WithObserver(c))
//	app := element.NewApplication(doc, inj, element.WithRuntime(rt), element.WithObserver(c))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "lumen").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
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

// WithBuckets sets the render duration buckets.
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
		Namespace: "lumen",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records lumen activity.
type Collector struct {
	effectsCreated   prometheus.Counter
	effectRuns       prometheus.Counter
	effectsActive    prometheus.Gauge
	expressionErrors *prometheus.CounterVec
	directives       prometheus.Gauge
	renders          *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	hostsDestroyed   *prometheus.CounterVec
}

// New registers the metrics and returns a Collector.
//
// Metrics collected:
//   - lumen_effects_created_total: Counter of effects created
//   - lumen_effect_runs_total: Counter of effect executions
//   - lumen_effects_active: Gauge of live effects
//   - lumen_expression_errors_total: Counter of swallowed binding failures by kind
//   - lumen_directives_active: Gauge of live directive instances
//   - lumen_renders_total: Counter of component renders by selector and status
//   - lumen_render_duration_seconds: Histogram of render duration by selector
//   - lumen_hosts_destroyed_total: Counter of component teardowns by selector
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		effectsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_created_total",
			Help:        "Total number of reactive effects created",
			ConstLabels: config.ConstLabels,
		}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of reactive effect executions",
			ConstLabels: config.ConstLabels,
		}),

		effectsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_active",
			Help:        "Number of reactive effects not yet destroyed",
			ConstLabels: config.ConstLabels,
		}),

		expressionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "expression_errors_total",
			Help:        "Total number of binding expressions that failed to evaluate",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		directives: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "directives_active",
			Help:        "Number of live directive instances",
			ConstLabels: config.ConstLabels,
		}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: config.ConstLabels,
		}, []string{"selector", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"selector"}),

		hostsDestroyed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "hosts_destroyed_total",
			Help:        "Total number of component hosts torn down",
			ConstLabels: config.ConstLabels,
		}, []string{"selector"}),
	}
}

// EffectCreated implements reactive.Observer.
func (c *Collector) EffectCreated() {
	c.effectsCreated.Inc()
	c.effectsActive.Inc()
}

// EffectRun implements reactive.Observer.
func (c *Collector) EffectRun() {
	c.effectRuns.Inc()
}

// EffectDestroyed implements reactive.Observer.
func (c *Collector) EffectDestroyed() {
	c.effectsActive.Dec()
}

// ExpressionFailed implements binding.Observer.
func (c *Collector) ExpressionFailed(kind string) {
	c.expressionErrors.WithLabelValues(kind).Inc()
}

// DirectiveCreated implements directive.Observer.
func (c *Collector) DirectiveCreated() {
	c.directives.Inc()
}

// DirectiveDestroyed implements directive.Observer.
func (c *Collector) DirectiveDestroyed() {
	c.directives.Dec()
}

// RenderCompleted implements element.Observer.
func (c *Collector) RenderCompleted(selector string, took time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.renders.WithLabelValues(selector, status).Inc()
	c.renderDuration.WithLabelValues(selector).Observe(took.Seconds())
}

// HostDestroyed implements element.Observer.
func (c *Collector) HostDestroyed(selector string) {
	c.hostsDestroyed.WithLabelValues(selector).Inc()
}
