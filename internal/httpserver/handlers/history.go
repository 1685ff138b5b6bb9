package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
	redisstore "github.com/ceacwatch/ceacwatch/internal/store/redis"
)

type historyResponse struct {
	Success bool                        `json:"success"`
	Results []redisstore.ArchivedResult `json:"results"`
}

// History returns the archived results for an application, newest first.
func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Archive == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Success: false,
				Error:   "history archive not configured",
			})
			return
		}

		appID := chi.URLParam(r, "application_id")
		results, err := d.Archive.History(r.Context(), appID)
		if err != nil {
			d.Logger.Error("history lookup failed",
				logger.String("application_id", appID),
				logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Success: false,
				Error:   "history lookup failed",
			})
			return
		}
		if len(results) == 0 {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Success: false,
				Error:   "no archived results for this application",
			})
			return
		}

		writeJSON(w, http.StatusOK, historyResponse{
			Success: true,
			Results: results,
		})
	}
}
