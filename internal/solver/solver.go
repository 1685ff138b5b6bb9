// Package solver defines the CAPTCHA-solving capability used by the
// automatic flow.
package solver

import "context"

// Solver maps a CAPTCHA image to a best-guess text answer.
//
// Implementations must be safe for concurrent use: one solver instance is
// shared across all sessions and no per-session state may leak into it.
type Solver interface {
	Solve(ctx context.Context, image []byte) (string, error)
}
