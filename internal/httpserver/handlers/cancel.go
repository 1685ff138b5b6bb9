package handlers

import (
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

type cancelRequest struct {
	SessionID string `json:"session_id"`
}

type cancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Cancel tears down a session, aborting any operation in flight.
func Cancel(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		if err := d.Orchestrator.Cancel(req.SessionID); err != nil {
			writeError(w, err)
			return
		}

		d.Logger.Info("session cancelled",
			logger.String("session_id", req.SessionID))

		writeJSON(w, http.StatusOK, cancelResponse{
			Success: true,
			Message: "session cancelled",
		})
	}
}
