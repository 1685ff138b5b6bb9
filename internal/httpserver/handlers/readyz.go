package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

type readyzResponse struct {
	Ready  bool   `json:"ready"`
	Solver bool   `json:"solver"`
	Error  string `json:"error,omitempty"`
}

// Readyz reports readiness. Redis is only checked when the archive is
// configured; the core checker works without it.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Ready:  true,
			Solver: d.Orchestrator.SolverAvailable(),
		}

		if d.Archive != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := d.Archive.Ping(ctx)
			cancel()
			if err != nil {
				d.Logger.Warn("readyz redis ping failed", logger.Error(err))
				resp.Ready = false
				resp.Error = "redis unreachable"
				writeJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
