package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/pkg/errors"
)

// MetricsCollector registers metric vectors on a private registry and exposes
// them over HTTP.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Handler() http.Handler
}

type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

type Counter interface {
	Inc()
	Add(delta float64)
}

type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
	Add(delta float64)
}

type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

type Histogram interface {
	Observe(value float64)
}

// CollectorConfig names the metrics and selects the runtime collectors.
type CollectorConfig struct {
	Namespace            string
	Subsystem            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
}

type registryCollector struct {
	cfg      CollectorConfig
	registry *prometheus.Registry
	logger   logging.Logger

	mu   sync.Mutex
	vecs map[string]prometheus.Collector
}

// NewMetricsCollector creates a MetricsCollector backed by a fresh registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, errors.New(errors.ErrCodeValidation, "metrics namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	reg := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.EnableGoMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}
	return &registryCollector{
		cfg:      cfg,
		registry: reg,
		logger:   logger,
		vecs:     make(map[string]prometheus.Collector),
	}, nil
}

func (c *registryCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *registryCollector) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{Namespace: c.cfg.Namespace, Subsystem: c.cfg.Subsystem, Name: name, Help: help}
}

// register returns the vector already registered under name, or registers
// vec.  Registering the same name twice yields the first vector so AppMetrics
// may be built repeatedly on one collector.  It returns nil on failure.
func (c *registryCollector) register(kind, name string, vec prometheus.Collector) prometheus.Collector {
	fq := prometheus.BuildFQName(c.cfg.Namespace, c.cfg.Subsystem, name)

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.vecs[fq]; ok {
		return existing
	}
	if err := c.registry.Register(vec); err != nil {
		c.logger.Error("failed to register metric",
			logging.String("name", fq), logging.String("type", kind), logging.Err(err))
		return nil
	}
	c.vecs[fq] = vec
	return vec
}

func (c *registryCollector) mismatch(kind, name string, got prometheus.Collector) {
	if got != nil {
		c.logger.Warn("metric registered with another type",
			logging.String("name", name), logging.String("type", kind))
	}
}

func (c *registryCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	got := c.register("counter", name, prometheus.NewCounterVec(prometheus.CounterOpts(c.opts(name, help)), labels))
	if v, ok := got.(*prometheus.CounterVec); ok {
		return counterVec{v}
	}
	c.mismatch("counter", name, got)
	return noopCounterVec{}
}

func (c *registryCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	got := c.register("gauge", name, prometheus.NewGaugeVec(prometheus.GaugeOpts(c.opts(name, help)), labels))
	if v, ok := got.(*prometheus.GaugeVec); ok {
		return gaugeVec{v}
	}
	c.mismatch("gauge", name, got)
	return noopGaugeVec{}
}

// RegisterHistogram registers a histogram; nil buckets mean
// prometheus.DefBuckets.
func (c *registryCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	o := c.opts(name, help)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: o.Namespace,
		Subsystem: o.Subsystem,
		Name:      o.Name,
		Help:      o.Help,
		Buckets:   buckets,
	}, labels)
	got := c.register("histogram", name, vec)
	if v, ok := got.(*prometheus.HistogramVec); ok {
		return histogramVec{v}
	}
	c.mismatch("histogram", name, got)
	return noopHistogramVec{}
}

type counterVec struct{ *prometheus.CounterVec }

func (v counterVec) WithLabelValues(lvs ...string) Counter { return v.CounterVec.WithLabelValues(lvs...) }

type gaugeVec struct{ *prometheus.GaugeVec }

func (v gaugeVec) WithLabelValues(lvs ...string) Gauge { return v.GaugeVec.WithLabelValues(lvs...) }

type histogramVec struct{ *prometheus.HistogramVec }

func (v histogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.HistogramVec.WithLabelValues(lvs...)
}

type noopCollector struct{}

// NewNoopCollector returns a MetricsCollector that records nothing.  Its
// Handler responds 404.
func NewNoopCollector() MetricsCollector { return noopCollector{} }

func (noopCollector) RegisterCounter(string, string, ...string) CounterVec { return noopCounterVec{} }
func (noopCollector) RegisterGauge(string, string, ...string) GaugeVec     { return noopGaugeVec{} }
func (noopCollector) RegisterHistogram(string, string, []float64, ...string) HistogramVec {
	return noopHistogramVec{}
}
func (noopCollector) Handler() http.Handler { return http.NotFoundHandler() }

type noopCounterVec struct{}
type noopGaugeVec struct{}
type noopHistogramVec struct{}
type noopMetric struct{}

func (noopCounterVec) WithLabelValues(...string) Counter     { return noopMetric{} }
func (noopGaugeVec) WithLabelValues(...string) Gauge         { return noopMetric{} }
func (noopHistogramVec) WithLabelValues(...string) Histogram { return noopMetric{} }

func (noopMetric) Inc()            {}
func (noopMetric) Dec()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

//Personal.AI order the ending
