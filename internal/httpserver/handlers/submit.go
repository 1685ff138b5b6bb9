package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

type submitRequest struct {
	SessionID       string `json:"session_id"`
	CaptchaSolution string `json:"captcha_solution"`
}

type submitResponse struct {
	Success    bool                 `json:"success"`
	Data       *domain.StatusRecord `json:"data"`
	Screenshot string               `json:"screenshot,omitempty"`
}

// Submit sends the client's CAPTCHA answer and returns the extracted status
// record. A wrong answer ends the session; the client must start over.
func Submit(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := d.Orchestrator.Submit(r.Context(), req.SessionID, req.CaptchaSolution)
		if err != nil {
			d.Logger.Warn("submit failed",
				logger.String("session_id", req.SessionID),
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
