package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/extract"
	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/session"
)

// Check runs the fully automatic flow: open, solve, submit, and on CAPTCHA
// rejection retry against a fresh challenge, up to maxRetries retries beyond
// the initial attempt (so at most maxRetries+1 submissions total). The caller
// blocks until a terminal outcome.
func (o *Orchestrator) Check(ctx context.Context, query domain.Query, maxRetries int) (*SubmitResult, error) {
	query = query.Trimmed()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	// Checked before any browser work: a missing inference backend must not
	// cost a Chrome tab.
	if o.solver == nil {
		return nil, domain.ErrSolverUnavailable
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	sess := o.store.Create(query, maxRetries)
	defer o.store.Release(sess)

	h, err := o.browser.Open(ctx, query)
	if err != nil {
		return nil, o.fail(sess, fmt.Errorf("failed to open visa status page: %w", err))
	}
	sess.AttachHandle(h)
	if err := sess.To(session.StateCaptchaPresented); err != nil {
		return nil, o.fail(sess, err)
	}

	for {
		img, err := h.CaptchaImage(ctx)
		if err != nil {
			return nil, o.fail(sess, err)
		}

		answer, err := o.solver.Solve(ctx, img)
		if err != nil {
			return nil, o.fail(sess, fmt.Errorf("captcha solver failed: %w", err))
		}
		o.log.Debug("captcha solved",
			logger.String("session_id", sess.ID),
			logger.Int("attempt", sess.RetryCount()+1))

		if err := sess.To(session.StateSubmitted); err != nil {
			return nil, o.fail(sess, err)
		}

		popup, err := h.SubmitCaptcha(ctx, answer)
		if err == nil {
			rec, perr := extract.StatusRecord(popup)
			if perr != nil {
				return nil, o.fail(sess, perr)
			}
			shot, serr := h.Screenshot(ctx)
			if serr != nil {
				o.log.Warn("failed to capture result screenshot",
					logger.String("session_id", sess.ID),
					logger.Error(serr))
			}
			o.finish(ctx, sess, rec)
			return &SubmitResult{Record: rec, Screenshot: shot}, nil
		}

		if !errors.Is(err, domain.ErrCaptchaRejected) {
			return nil, o.fail(sess, err)
		}

		if terr := sess.To(session.StateCaptchaRejected); terr != nil {
			return nil, o.fail(sess, terr)
		}
		if sess.RetryCount() >= sess.MaxRetries() {
			return nil, o.fail(sess, fmt.Errorf("%w: gave up after %d submissions", domain.ErrMaxRetriesExceeded, sess.RetryCount()+1))
		}
		attempt := sess.IncRetry()
		o.log.Warn("captcha rejected, retrying with a fresh challenge",
			logger.String("session_id", sess.ID),
			logger.Int("retry", attempt),
			logger.Int("max_retries", sess.MaxRetries()))

		if terr := sess.To(session.StateCaptchaPresented); terr != nil {
			return nil, o.fail(sess, terr)
		}
		// The site rotates its challenge per page load; reload and re-fill so
		// the next CaptchaImage call sees a genuinely fresh CAPTCHA.
		if err := h.Refresh(ctx); err != nil {
			return nil, o.fail(sess, err)
		}
	}
}
