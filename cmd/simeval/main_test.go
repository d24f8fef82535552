package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-simeval/internal/infrastructure/logging"
)

const testBuilding = `
room_sensors:
  - {count: 1, type: SensorType_0}
  - {count: 2, type: SensorType_1}
sub_room_sensors:
  - {count: 1, type: SensorType_0}
  - {count: 2, type: SensorType_1}
nodes:
  - {kind: room, number: 0, doors: false}
  - {kind: staircase, number: 0}
sub_rooms:
  - {parent: RwnD0, count: 1, doors: true, windows: true}
connections:
  - {from: RwnD0, to: S0}
`

const testEvents = `[
  {"id": "Message_of_0_Sensor_RwnD0_no._0_of_type_SensorType_0", "time": "2026-01-05T09:00:00Z",
   "action": {"kind": "message", "payload": "Downlink_Message_light:On,"}},
  {"id": "Movable_object_0_move_no._0", "time": "2026-01-05T09:00:01Z",
   "action": {"kind": "move", "destination": "RwnD0_RwD0_sub"}},
  {"id": "Movable_object_0_move_no._1", "time": "2026-01-05T09:00:03Z",
   "action": {"kind": "move", "destination": "S0"}},
  {"id": "Message_of_0_Sensor_RwnD0_no._0_of_type_SensorType_0", "time": "2026-01-05T09:00:04Z",
   "action": {"kind": "message", "payload": "Downlink_Message_light:Off,"}}
]`

// writeTestConfig lays out a building, a timeline and a config in a temp
// directory and points SIMEVAL_CONFIG at it.
func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"building.yaml": testBuilding,
		"events.json":   testEvents,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	cfg := `
site:
  id: test-site
  timezone: UTC
database:
  path: ` + filepath.Join(dir, "data", "simeval.db") + `
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: false
influxdb:
  enabled: false
logging:
  level: error
  format: text
  output: stdout
api:
  enabled: false
  host: 127.0.0.1
  port: 8090
evaluation:
  timeline_file: ` + filepath.Join(dir, "events.json") + `
  building_file: ` + filepath.Join(dir, "building.yaml") + `
  report_dir: ` + filepath.Join(dir, "reports") + `
  jitter_max_ms: 0
  seed: 7
` + extra
	path := filepath.Join(dir, "simeval.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("SIMEVAL_CONFIG", path)
	return dir
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("SIMEVAL_CONFIG", "/nonexistent/path/simeval.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want loading config error", err)
	}
}

func TestRun_EvaluatesTimeline(t *testing.T) {
	dir := writeTestConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	reports, err := filepath.Glob(filepath.Join(dir, "reports", "Energy_evaluation_*.txt"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %v, want exactly one", reports)
	}
	data, err := os.ReadFile(reports[0])
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "Energy consumption per sub room in Wh: ") {
		t.Errorf("report = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "simeval.db")); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestRun_ExportsToVictoriaMetrics(t *testing.T) {
	var (
		mu    sync.Mutex
		lines []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/write" {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			lines = append(lines, strings.Split(string(body), "\n")...)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	writeTestConfig(t, "tsdb:\n  enabled: true\n  url: "+srv.URL+"\n")

	if err := run(context.Background()); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	var energy, summary int
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "energy_evaluation,"):
			energy++
		case strings.HasPrefix(l, "energy_evaluation_summary,"):
			summary++
		}
	}
	if energy == 0 || summary != 1 {
		t.Errorf("points = %d energy, %d summary; want at least 1 and exactly 1 (lines %q)", energy, summary, lines)
	}
}

func TestRun_MissingTimeline(t *testing.T) {
	dir := writeTestConfig(t, "")
	if err := os.Remove(filepath.Join(dir, "events.json")); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	err := run(context.Background())
	if err == nil {
		t.Fatal("run() should fail without a timeline file")
	}
	if !strings.Contains(err.Error(), "evaluating") {
		t.Errorf("run() error = %v, want evaluating error", err)
	}
}

func TestRun_BadBuilding(t *testing.T) {
	dir := writeTestConfig(t, "")
	if err := os.WriteFile(filepath.Join(dir, "building.yaml"), []byte("nodes: [{kind: attic}]"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	err := run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "loading building") {
		t.Errorf("run() error = %v, want loading building error", err)
	}
}

func TestNewRulesEngine(t *testing.T) {
	cfg := &config.Config{
		Site:  config.SiteConfig{Timezone: "UTC"},
		Rules: config.RulesConfig{Enabled: false},
	}
	engine, err := newRulesEngine(cfg, nil)
	if err != nil || engine != nil {
		t.Errorf("newRulesEngine(disabled) = %v, %v; want nil, nil", engine, err)
	}

	cfg.Rules = config.RulesConfig{Enabled: true, DimStart: "25:00:00", DimEnd: "17:59:59"}
	if _, err := newRulesEngine(cfg, nil); err == nil {
		t.Error("newRulesEngine() should reject an invalid clock")
	}
}

func TestNewPublisher_NoSinks(t *testing.T) {
	p := newPublisher(nil, nil, nil, logging.Discard())
	if p.Enabled() {
		t.Error("publisher without sinks should be disabled")
	}
}
