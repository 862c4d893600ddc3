package handlers

import (
	"net/http"
	"time"

	applog "patisserie/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
// It reports 503 when a configured database no longer answers pings.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: "not configured",
		Time:     time.Now().UTC(),
	}
	status := http.StatusOK

	if database != nil {
		resp.Database = "ok"
		sqlDB, err := database.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			applog.Error(r.Context(), "database health check failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
	applog.Debug(r.Context(), "health check responded", "status", resp.Status)
}
