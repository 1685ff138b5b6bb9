package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/httpserver/deps"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes. Every failure body
// carries a human-readable error string and no partial data.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Success: false, Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionBusy),
		errors.Is(err, domain.ErrInvalidSessionState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSolverUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrCaptchaRejected):
		// The guess was wrong, the request itself was fine.
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMaxRetriesExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	return nil
}

// resolveLocation normalizes the client-supplied location against the
// embassy index. Unknown locations fail before a browser is spawned.
func resolveLocation(d deps.Deps, q *domain.Query) error {
	canonical, ok := d.Locations.Resolve(q.Location)
	if !ok {
		d.Logger.Warn("unknown embassy location",
			logger.String("location", q.Location))
		return fmt.Errorf("%w: unknown embassy location %q", domain.ErrInvalidInput, q.Location)
	}
	q.Location = canonical
	return nil
}
