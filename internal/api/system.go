package api

import (
	"context"
	"net/http"
	"time"

	"github.com/nerrad567/emotionalsongs-core/internal/integrity"
)

// healthCheckTimeout bounds the database ping behind /health.
const healthCheckTimeout = 2 * time.Second

// healthResponse is the response body for GET /health.
type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
	MQTT     string `json:"mqtt,omitempty"`
}

// handleHealth reports liveness. A failed database ping degrades the status
// and returns 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Version: s.version, Database: "ok"}
	status := http.StatusOK

	if err := s.db.HealthCheck(ctx); err != nil {
		s.logger.Warn("database health check failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if s.mqtt != nil {
		resp.MQTT = "connected"
		if !s.mqtt.IsConnected() {
			resp.MQTT = "disconnected"
		}
	}

	writeJSON(w, status, resp)
}

// integrityTable is one table of the integrity response.
type integrityTable struct {
	Table   string   `json:"table"`
	Exists  bool     `json:"exists"`
	Missing []string `json:"missing"`
}

// integrityResponse is the response body for GET /system/integrity.
type integrityResponse struct {
	OK            bool             `json:"ok"`
	SchemaVersion int64            `json:"schema_version"`
	Missing       int              `json:"missing_columns"`
	Tables        []integrityTable `json:"tables"`
}

// handleIntegrity compares the live schema against the column registry.
// It never repairs; that is an operator action on the CLI.
func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := integrity.Check(ctx, s.db, s.db.Dialect())
	if err != nil {
		s.logger.Error("integrity check failed", "error", err)
		writeInternalError(w, "integrity check failed")
		return
	}

	version, err := s.db.SchemaVersion(ctx)
	if err != nil {
		s.logger.Warn("reading schema version", "error", err)
	}

	resp := integrityResponse{
		OK:            report.OK(),
		SchemaVersion: version,
		Missing:       report.MissingColumns(),
		Tables:        make([]integrityTable, 0, len(report.Tables)),
	}
	for _, t := range report.Tables {
		resp.Tables = append(resp.Tables, integrityTable{
			Table:   string(t.Table),
			Exists:  t.Exists,
			Missing: t.MissingNames(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
