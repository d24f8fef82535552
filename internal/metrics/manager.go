// Package metrics exposes Prometheus metrics for analysis runs and the HTTP
// API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultNamespace = "simeval"
	defaultSubsystem = "pipeline"
)

// RunStats are the counts produced by one pipeline run.
type RunStats struct {
	Events      int
	Synthesized int
	Replaced    int
	RuleEvents  int
	RoomMean    float64
	SubRoomMean float64
	Duration    time.Duration
}

// Manager owns the service's Prometheus collectors.
//
// Each Manager registers on its own registry, so tests can create as many as
// they like.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	runsTotal         prometheus.Counter
	eventsProcessed   prometheus.Counter
	eventsSynthesized prometheus.Counter
	eventsReplaced    prometheus.Counter
	ruleEvents        prometheus.Counter
	pipelineErrors    *prometheus.CounterVec
	pipelineDuration  prometheus.Histogram
	roomMean          prometheus.Gauge
	subRoomMean       prometheus.Gauge
	lastRunUnix       prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager and registers its collectors, plus the Go
// runtime and process collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        defaultNamespace,
		subsystem:        defaultSubsystem,
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of completed analysis runs",
	})
	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_processed_total",
		Help:      "Total number of timeline events aggregated",
	})
	m.eventsSynthesized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_synthesized_total",
		Help:      "Total number of occupancy messages synthesized from movements",
	})
	m.eventsReplaced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_replaced_total",
		Help:      "Total number of timeline events rewritten by the synthesizer",
	})
	m.ruleEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rule_events_total",
		Help:      "Total number of light messages emitted by lighting rules",
	})
	m.pipelineErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Total number of failed pipeline stages",
	}, []string{"stage"})
	m.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duration_seconds",
		Help:      "Duration of analysis runs in seconds",
		Buckets:   m.histogramBuckets,
	})
	m.roomMean = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "room_mean_wh",
		Help:      "Mean Wh per room in the latest run",
	})
	m.subRoomMean = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sub_room_mean_wh",
		Help:      "Mean Wh per sub-room in the latest run",
	})
	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the latest completed run",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

// RecordRun records a completed pipeline run.
func (m *Manager) RecordRun(s RunStats) {
	m.runsTotal.Inc()
	m.eventsProcessed.Add(float64(s.Events))
	m.eventsSynthesized.Add(float64(s.Synthesized))
	m.eventsReplaced.Add(float64(s.Replaced))
	m.ruleEvents.Add(float64(s.RuleEvents))
	m.pipelineDuration.Observe(s.Duration.Seconds())
	m.roomMean.Set(s.RoomMean)
	m.subRoomMean.Set(s.SubRoomMean)
	m.lastRunUnix.SetToCurrentTime()
}

// RecordError counts a failure in the named pipeline stage.
func (m *Manager) RecordError(stage string) {
	m.pipelineErrors.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// Registry returns the registry the collectors are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler for this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
