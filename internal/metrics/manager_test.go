package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManagerOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("test"),
		WithSubsystem("eval"),
		WithHistogramBuckets([]float64{0.1, 1}),
		WithPrometheusRegistry(registry),
	)

	if m.Registry() != registry {
		t.Error("Registry() did not return the injected registry")
	}
	m.RecordRun(RunStats{Events: 1})

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "test_eval_runs_total" {
			found = true
		}
	}
	if !found {
		t.Error("test_eval_runs_total not registered")
	}
}

func TestNewManagerDefaultsAreIndependent(t *testing.T) {
	// Two managers must not collide on registration.
	a := NewManager()
	b := NewManager()
	a.RecordRun(RunStats{Events: 3})

	if got := testutil.ToFloat64(b.eventsProcessed); got != 0 {
		t.Errorf("second manager events = %v, want 0", got)
	}
}

func TestRecordRun(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.RecordRun(RunStats{
		Events:      10,
		Synthesized: 3,
		Replaced:    1,
		RuleEvents:  4,
		RoomMean:    0.5,
		SubRoomMean: 0.125,
		Duration:    20 * time.Millisecond,
	})
	m.RecordRun(RunStats{Events: 5, RoomMean: 0.25})

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"runs", m.runsTotal, 2},
		{"events", m.eventsProcessed, 15},
		{"synthesized", m.eventsSynthesized, 3},
		{"replaced", m.eventsReplaced, 1},
		{"rule events", m.ruleEvents, 4},
		{"room mean is latest", m.roomMean, 0.25},
		{"sub-room mean is latest", m.subRoomMean, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.collector); got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
	if n := testutil.CollectAndCount(m.pipelineDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestRecordError(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.RecordError("aggregate")
	m.RecordError("aggregate")
	m.RecordError("export")

	if got := testutil.ToFloat64(m.pipelineErrors.WithLabelValues("aggregate")); got != 2 {
		t.Errorf("aggregate errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.pipelineErrors.WithLabelValues("export")); got != 1 {
		t.Errorf("export errors = %v, want 1", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

	m.RecordHTTPRequest("/api/v1/runs", http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.RecordHTTPRequest("/api/v1/runs", http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.RecordHTTPRequest("/api/v1/runs/{id}", http.MethodGet, http.StatusNotFound, time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/runs", "GET", "200")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/v1/runs/{id}", "GET", "404")); got != 1 {
		t.Errorf("not found requests = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
	m.RecordRun(RunStats{Events: 7})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "simeval_pipeline_events_processed_total 7") {
		t.Errorf("body missing events counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("body missing Go runtime metrics")
	}
}
