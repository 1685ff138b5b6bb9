package domain

import "errors"

// Error taxonomy for the checker. Handlers map these onto HTTP status codes;
// the orchestrators and store return them wrapped with context via %w.
var (
	// ErrInvalidInput is returned when the lookup query is malformed or
	// incomplete. Rejected before any session or browser work happens.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound is returned for unknown or already-evicted session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidSessionState is returned when an operation is illegal for the
	// session's current lifecycle state. The state is left unchanged.
	ErrInvalidSessionState = errors.New("invalid session state")

	// ErrSessionBusy is returned when another operation is already in flight
	// against the same session. Callers should not retry blindly.
	ErrSessionBusy = errors.New("session busy")

	// ErrCaptchaRejected means the site refused the submitted CAPTCHA answer.
	// Recoverable by retry (automatic flow) or by starting over (manual flow).
	ErrCaptchaRejected = errors.New("captcha rejected")

	// ErrSolverUnavailable means the automatic flow was requested but no
	// inference backend is configured.
	ErrSolverUnavailable = errors.New("automatic CAPTCHA solving not available: no solver configured")

	// ErrMaxRetriesExceeded means the automatic flow exhausted its retry budget.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrParseFailure means the result popup did not match the expected shape.
	ErrParseFailure = errors.New("could not find status information on the page")
)
