package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

type checkAutoRequest struct {
	domain.Query
	MaxRetries int `json:"max_retries"`
}

// CheckAuto runs the full lookup without client interaction, solving
// CAPTCHAs through the configured inference endpoint and retrying rejected
// guesses with a fresh challenge.
func CheckAuto(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkAutoRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := resolveLocation(d, &req.Query); err != nil {
			writeError(w, err)
			return
		}

		maxRetries := req.MaxRetries
		if maxRetries <= 0 {
			maxRetries = d.DefaultMaxRetries
		}

		res, err := d.Orchestrator.Check(r.Context(), req.Query, maxRetries)
		if err != nil {
			d.Logger.Warn("automatic check failed",
				logger.String("application_id", req.ApplicationID),
				logger.Error(err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, submitResponse{
			Success:    true,
			Data:       res.Record,
			Screenshot: base64.StdEncoding.EncodeToString(res.Screenshot),
		})
	}
}
