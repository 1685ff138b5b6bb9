package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
)

type checkRequest struct {
	domain.Query
	SessionID       string `json:"session_id"`
	CaptchaSolution string `json:"captcha_solution"`
}

type checkChallengeResponse struct {
	Success         bool   `json:"success"`
	CaptchaRequired bool   `json:"captcha_required"`
	SessionID       string `json:"session_id"`
	CaptchaImage    string `json:"captcha_image"`
}

// Check is the one-shot variant of the manual flow. Without a CAPTCHA
// solution it opens a session and returns the challenge; called again with
// the session id and the solution it completes the lookup.
func Check(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		if req.CaptchaSolution != "" {
			if req.SessionID == "" {
				writeError(w, fmt.Errorf("%w: captcha_solution given without session_id", domain.ErrInvalidInput))
				return
			}
			res, err := d.Orchestrator.Submit(r.Context(), req.SessionID, req.CaptchaSolution)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, submitResponse{
				Success:    true,
				Data:       res.Record,
				Screenshot: base64.StdEncoding.EncodeToString(res.Screenshot),
			})
			return
		}

		if err := resolveLocation(d, &req.Query); err != nil {
			writeError(w, err)
			return
		}
		res, err := d.Orchestrator.Start(r.Context(), req.Query)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, checkChallengeResponse{
			Success:         true,
			CaptchaRequired: true,
			SessionID:       res.SessionID,
			CaptchaImage:    base64.StdEncoding.EncodeToString(res.CaptchaImage),
		})
	}
}
