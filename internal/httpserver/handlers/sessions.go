package handlers

import (
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/session"
)

type sessionsResponse struct {
	Success  bool              `json:"success"`
	Sessions []session.Summary `json:"sessions"`
	Total    int               `json:"total"`
}

// Sessions lists active sessions for diagnostics.
func Sessions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := d.Orchestrator.Store().List()
		writeJSON(w, http.StatusOK, sessionsResponse{
			Success:  true,
			Sessions: list,
			Total:    len(list),
		})
	}
}
