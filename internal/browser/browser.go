// Package browser drives the CEAC status tracker site through a headless
// Chrome instance.
//
// The rest of the service only sees the Browser and Handle interfaces; tests
// substitute fakes and the orchestrators never touch chromedp directly.
package browser

import (
	"context"

	"github.com/ceacwatch/ceacwatch/internal/domain"
)

// Browser opens live page contexts against the status tracker site.
type Browser interface {
	// Open navigates to the status form and fills it with the query.
	// The returned Handle owns one browser tab; it is not safe for concurrent
	// use and must be closed exactly once.
	Open(ctx context.Context, query domain.Query) (Handle, error)
}

// Handle is one live, exclusively-owned page context with the lookup form
// already filled.
//
// All operations block on real page round-trips; callers should expect
// multi-second latencies.
type Handle interface {
	// CaptchaImage screenshots the current CAPTCHA challenge as PNG bytes.
	CaptchaImage(ctx context.Context) ([]byte, error)

	// SubmitCaptcha fills in the answer and submits the form. On success it
	// returns the raw text of the result popup. A wrong answer returns an
	// error matching domain.ErrCaptchaRejected; any other submission error is
	// unrecoverable for this handle.
	SubmitCaptcha(ctx context.Context, answer string) (string, error)

	// Refresh reloads the page and re-fills the form, rotating the site's
	// CAPTCHA challenge. Required between automatic-flow retries: the site
	// issues a fresh challenge per page load.
	Refresh(ctx context.Context) error

	// Screenshot captures the full page, for returning alongside results.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close releases the underlying tab. Safe to call more than once.
	Close() error
}
