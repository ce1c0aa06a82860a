package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/influxdb"
)

// StatsSource reports write counters for the metrics sink.
// *influxdb.Client satisfies it.
type StatsSource interface {
	Stats() influxdb.Stats
}

// metricsResponse is the body of GET /metrics.
type metricsResponse struct {
	Timestamp     time.Time       `json:"timestamp"`
	Version       string          `json:"version"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Runtime       runtimeStats    `json:"runtime"`
	Database      databaseStats   `json:"database"`
	Catalog       catalogStats    `json:"catalog"`
	MQTT          *mqttStats      `json:"mqtt,omitempty"`
	InfluxDB      *influxdb.Stats `json:"influxdb,omitempty"`
}

type runtimeStats struct {
	Goroutines int     `json:"goroutines"`
	HeapMB     float64 `json:"heap_mb"`
	TotalMB    float64 `json:"total_alloc_mb"`
	GCCycles   uint32  `json:"gc_cycles"`
}

type databaseStats struct {
	Dialect   string `json:"dialect"`
	Open      int    `json:"open"`
	InUse     int    `json:"in_use"`
	Idle      int    `json:"idle"`
	WaitCount int64  `json:"wait_count"`
}

type catalogStats struct {
	FetchStrategy string `json:"fetch_strategy"`
}

type mqttStats struct {
	Connected bool `json:"connected"`
}

const bytesPerMB = 1 << 20

func collectRuntime() runtimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return runtimeStats{
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     float64(ms.HeapAlloc) / bytesPerMB,
		TotalMB:    float64(ms.TotalAlloc) / bytesPerMB,
		GCCycles:   ms.NumGC,
	}
}

// handleMetrics reports process, pool and backing-service counters.
// Optional services are omitted when not configured.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	pool := s.db.Stats()
	resp := metricsResponse{
		Timestamp:     time.Now().UTC(),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime) / time.Second),
		Runtime:       collectRuntime(),
		Database: databaseStats{
			Dialect:   s.db.Dialect().String(),
			Open:      pool.OpenConnections,
			InUse:     pool.InUse,
			Idle:      pool.Idle,
			WaitCount: pool.WaitCount,
		},
		Catalog: catalogStats{FetchStrategy: s.store.FetchStrategy().Name()},
	}
	if s.mqtt != nil {
		resp.MQTT = &mqttStats{Connected: s.mqtt.IsConnected()}
	}
	if s.sink != nil {
		stats := s.sink.Stats()
		resp.InfluxDB = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}
