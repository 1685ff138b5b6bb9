package handlers

import (
	"net/http"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
)

type healthResponse struct {
	Status         string  `json:"status"`
	Service        string  `json:"service"`
	ActiveSessions int     `json:"active_sessions"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Version        string  `json:"version,omitempty"`
	Commit         string  `json:"commit,omitempty"`
	BuildDate      string  `json:"build_date,omitempty"`
	GoVersion      string  `json:"go_version,omitempty"`
}

func Health(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthResponse{
			Status:         "healthy",
			Service:        "visa-status-checker",
			ActiveSessions: d.Orchestrator.Store().Len(),
			UptimeSeconds:  time.Since(start).Seconds(),
			Version:        d.Version,
			Commit:         d.Commit,
			BuildDate:      d.BuildDate,
			GoVersion:      d.GoVersion,
		})
	}
}
