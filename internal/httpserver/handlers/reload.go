package handlers

import (
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

// Reload triggers a manual reload of the embassy locations file.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Success: false,
				Error:   "no locations file configured",
			})
			return
		}

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual locations reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, map[string]any{
				"success": true,
				"message": "reload triggered",
			})
		default:
			d.Logger.Warn("locations reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Success: false,
				Error:   "reload already in progress",
			})
		}
	}
}
