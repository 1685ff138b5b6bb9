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

// StartResult is what the manual flow hands back for a human to solve.
type StartResult struct {
	SessionID    string
	CaptchaImage []byte
}

// SubmitResult is the terminal success payload of either flow.
type SubmitResult struct {
	Record     *domain.StatusRecord
	Screenshot []byte
}

// Start opens a browser session, fills the lookup form and returns the
// CAPTCHA image for the caller to solve. The session stays alive awaiting
// Submit until it completes, is cancelled, or idles out.
func (o *Orchestrator) Start(ctx context.Context, query domain.Query) (*StartResult, error) {
	query = query.Trimmed()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sess := o.store.Create(query, 0)
	defer o.store.Release(sess)

	h, err := o.browser.Open(ctx, query)
	if err != nil {
		return nil, o.fail(sess, fmt.Errorf("failed to open visa status page: %w", err))
	}
	sess.AttachHandle(h)

	img, err := h.CaptchaImage(ctx)
	if err != nil {
		return nil, o.fail(sess, err)
	}
	if err := sess.To(session.StateCaptchaPresented); err != nil {
		return nil, o.fail(sess, err)
	}

	return &StartResult{SessionID: sess.ID, CaptchaImage: img}, nil
}

// Submit sends a human-provided CAPTCHA answer and extracts the status.
//
// Whatever the outcome, the session is torn down afterwards: a rejection is
// terminal for the manual flow, so the caller starts over with a fresh
// CAPTCHA rather than re-submitting against a stale one.
func (o *Orchestrator) Submit(ctx context.Context, sessionID, answer string) (*SubmitResult, error) {
	if answer == "" {
		return nil, fmt.Errorf("%w: missing captcha_solution", domain.ErrInvalidInput)
	}

	sess, err := o.store.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer o.store.Release(sess)

	if err := sess.Require(session.StateCaptchaPresented); err != nil {
		return nil, err
	}
	if err := sess.To(session.StateSubmitted); err != nil {
		return nil, err
	}

	popup, err := sess.Handle().SubmitCaptcha(ctx, answer)
	if err != nil {
		if errors.Is(err, domain.ErrCaptchaRejected) {
			_ = sess.To(session.StateCaptchaRejected)
			sess.ReleaseHandle()
			o.store.Remove(sess.ID)
			return nil, err
		}
		return nil, o.fail(sess, err)
	}

	rec, err := extract.StatusRecord(popup)
	if err != nil {
		return nil, o.fail(sess, err)
	}

	// Best effort: a failed screenshot should not void a successful check.
	shot, err := sess.Handle().Screenshot(ctx)
	if err != nil {
		o.log.Warn("failed to capture result screenshot",
			logger.String("session_id", sess.ID),
			logger.Error(err))
	}

	o.finish(ctx, sess, rec)
	return &SubmitResult{Record: rec, Screenshot: shot}, nil
}

// Cancel tears down a session from any non-terminal state, releasing its
// browser immediately even if an operation is in flight.
func (o *Orchestrator) Cancel(sessionID string) error {
	sess, err := o.store.Get(sessionID)
	if err != nil {
		return err
	}
	if err := sess.Cancel(); err != nil {
		return err
	}
	o.store.Remove(sess.ID)
	o.log.Info("session cancelled", logger.String("session_id", sess.ID))
	return nil
}
