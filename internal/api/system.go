package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemStatus is the /system response.
type SystemStatus struct {
	Timestamp     string          `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       RuntimeStats    `json:"runtime"`
	MQTT          *MQTTStatus     `json:"mqtt,omitempty"`
	Database      *DatabaseStats  `json:"database,omitempty"`
	Features      map[string]bool `json:"features"`
}

// RuntimeStats contains Go runtime statistics.
type RuntimeStats struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// MQTTStatus reports broker connectivity.
type MQTTStatus struct {
	Connected bool `json:"connected"`
}

// DatabaseStats contains connection pool statistics.
type DatabaseStats struct {
	Path            string `json:"path"`
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
}

// handleSystem reports process and dependency state.
func (s *Server) handleSystem(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeStats{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Features: map[string]bool{
			"start_runs": s.runner != nil,
			"events":     s.timelines != nil,
			"metrics":    s.metrics != nil,
		},
	}

	if s.mqtt != nil {
		status.MQTT = &MQTTStatus{Connected: s.mqtt.IsConnected()}
	}
	if s.db != nil {
		dbStats := s.db.Stats()
		status.Database = &DatabaseStats{
			Path:            s.db.Path(),
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, status)
}
