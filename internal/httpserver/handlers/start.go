package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

type startResponse struct {
	Success      bool   `json:"success"`
	SessionID    string `json:"session_id"`
	CaptchaImage string `json:"captcha_image"`
	Message      string `json:"message"`
}

// Start opens a browser session, fills the lookup form and returns the
// CAPTCHA challenge for the client to solve.
func Start(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var query domain.Query
		if err := decodeBody(r, &query); err != nil {
			writeError(w, err)
			return
		}
		if err := resolveLocation(d, &query); err != nil {
			writeError(w, err)
			return
		}

		res, err := d.Orchestrator.Start(r.Context(), query)
		if err != nil {
			writeError(w, err)
			return
		}

		d.Logger.Info("session started",
			logger.String("session_id", res.SessionID),
			logger.String("location", query.Location))

		writeJSON(w, http.StatusOK, startResponse{
			Success:      true,
			SessionID:    res.SessionID,
			CaptchaImage: base64.StdEncoding.EncodeToString(res.CaptchaImage),
			Message:      "CAPTCHA presented, submit the solution to continue",
		})
	}
}
