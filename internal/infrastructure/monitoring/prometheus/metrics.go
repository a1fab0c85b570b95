package prometheus

import (
	"strconv"
	"time"
)

// Check outcomes recorded on InteractionChecksTotal.
const (
	OutcomeHit              = "hit"
	OutcomeRejectedDistance = "rejected_distance"
	OutcomeRejectedAngle    = "rejected_angle"
)

// AppMetrics holds every metric vector the service records.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Interaction Layer
	InteractionChecksTotal CounterVec
	InteractionHitsTotal   CounterVec
	ScanDuration           HistogramVec

	// Profiling Layer
	ProfilingRunsTotal     CounterVec
	ProfilingFramesTotal   CounterVec
	ProfilingFrameDuration HistogramVec
	StatisticsGroups       GaugeVec

	// Infrastructure Layer
	DBQueryDuration        HistogramVec
	CacheOperationsTotal   CounterVec
	MessagesPublishedTotal CounterVec
	ExportsTotal           CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultScanDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics on collector and returns them.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	if collector == nil {
		collector = NewNoopCollector()
	}
	return &AppMetrics{
		HTTPRequestsTotal: collector.RegisterCounter("http_requests_total",
			"Total HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency", DefaultHTTPDurationBuckets, "method", "path"),

		InteractionChecksTotal: collector.RegisterCounter("interaction_checks_total",
			"Donor/acceptor pairs evaluated, by outcome", "interaction", "outcome"),
		InteractionHitsTotal: collector.RegisterCounter("interaction_hits_total",
			"Hydrogen bonds found, by interaction class", "interaction_class"),
		ScanDuration: collector.RegisterHistogram("interaction_scan_duration_seconds",
			"Duration of one member-pair scan", DefaultScanDurationBuckets, "interaction"),

		ProfilingRunsTotal: collector.RegisterCounter("profiling_runs_total",
			"Profiling runs, by status", "status"),
		ProfilingFramesTotal: collector.RegisterCounter("profiling_frames_total",
			"Frames profiled, by status", "status"),
		ProfilingFrameDuration: collector.RegisterHistogram("profiling_frame_duration_seconds",
			"Duration of profiling one frame", DefaultScanDurationBuckets),
		StatisticsGroups: collector.RegisterGauge("statistics_groups",
			"Number of hit groups in the most recent aggregation"),

		DBQueryDuration: collector.RegisterHistogram("db_query_duration_seconds",
			"Database query latency", DefaultDBDurationBuckets, "operation", "status"),
		CacheOperationsTotal: collector.RegisterCounter("cache_operations_total",
			"Cache operations, by result", "operation", "result"),
		MessagesPublishedTotal: collector.RegisterCounter("messages_published_total",
			"Messages published, by topic and status", "topic", "status"),
		ExportsTotal: collector.RegisterCounter("exports_total",
			"Exports written, by kind and status", "kind", "status"),
	}
}

// NewNoopAppMetrics returns AppMetrics that record nothing.
func NewNoopAppMetrics() *AppMetrics {
	return NewAppMetrics(NewNoopCollector())
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScan records the outcome counts of one member-pair scan.
func (m *AppMetrics) RecordScan(interaction string, hits, rejectedDistance, rejectedAngle int, duration time.Duration) {
	if m == nil {
		return
	}
	checks := m.InteractionChecksTotal
	checks.WithLabelValues(interaction, OutcomeHit).Add(float64(hits))
	checks.WithLabelValues(interaction, OutcomeRejectedDistance).Add(float64(rejectedDistance))
	checks.WithLabelValues(interaction, OutcomeRejectedAngle).Add(float64(rejectedAngle))
	m.ScanDuration.WithLabelValues(interaction).Observe(duration.Seconds())
}

// RecordCheck counts one single-pair check.
func (m *AppMetrics) RecordCheck(interaction, outcome string) {
	if m == nil {
		return
	}
	m.InteractionChecksTotal.WithLabelValues(interaction, outcome).Inc()
}

// RecordHit counts one hit for an interaction class.
func (m *AppMetrics) RecordHit(interactionClass string) {
	if m == nil {
		return
	}
	m.InteractionHitsTotal.WithLabelValues(interactionClass).Inc()
}

// RecordFrame records one profiled frame.
func (m *AppMetrics) RecordFrame(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.ProfilingFramesTotal.WithLabelValues(statusLabel(err)).Inc()
	m.ProfilingFrameDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordRun records one profiling run.
func (m *AppMetrics) RecordRun(err error) {
	if m == nil {
		return
	}
	m.ProfilingRunsTotal.WithLabelValues(statusLabel(err)).Inc()
}

// RecordStatisticsGroups sets the group gauge.
func (m *AppMetrics) RecordStatisticsGroups(n int) {
	if m == nil {
		return
	}
	m.StatisticsGroups.WithLabelValues().Set(float64(n))
}

// RecordDBQuery observes one database operation.
func (m *AppMetrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.DBQueryDuration.WithLabelValues(operation, statusLabel(err)).Observe(duration.Seconds())
}

// RecordCacheAccess counts a cache hit, miss or error.
func (m *AppMetrics) RecordCacheAccess(operation, result string) {
	if m == nil {
		return
	}
	m.CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordPublish counts published messages.
func (m *AppMetrics) RecordPublish(topic string, n int, err error) {
	if m == nil {
		return
	}
	m.MessagesPublishedTotal.WithLabelValues(topic, statusLabel(err)).Add(float64(n))
}

// RecordExport counts one export write.
func (m *AppMetrics) RecordExport(kind string, err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(kind, statusLabel(err)).Inc()
}

//Personal.AI order the ending
