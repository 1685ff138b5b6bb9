// Package orchestrator drives the manual and automatic status-check flows:
// session creation, browser steps, CAPTCHA resolution and teardown.
package orchestrator

import (
	"context"

	"github.com/ceacwatch/ceacwatch/internal/browser"
	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/session"
	"github.com/ceacwatch/ceacwatch/internal/solver"
)

// DefaultMaxRetries bounds the automatic flow when the caller does not say.
const DefaultMaxRetries = 3

// Archive persists completed checks. Optional; a nil archive disables it.
type Archive interface {
	SaveResult(ctx context.Context, query domain.Query, rec *domain.StatusRecord) error
}

// Orchestrator owns the session store and the external capabilities.
type Orchestrator struct {
	store   *session.Store
	browser browser.Browser
	solver  solver.Solver // nil when no inference backend is configured
	archive Archive       // nil when persistence is disabled
	log     logger.Logger
}

func New(store *session.Store, b browser.Browser, s solver.Solver, archive Archive, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		browser: b,
		solver:  s,
		archive: archive,
		log:     log,
	}
}

// Store exposes the session registry for diagnostics handlers.
func (o *Orchestrator) Store() *session.Store { return o.store }

// SolverAvailable reports whether the automatic flow can run at all. Checked
// before any browser work so a missing backend never wastes a Chrome tab.
func (o *Orchestrator) SolverAvailable() bool { return o.solver != nil }

// fail moves the session to FAILED, tears it down, and passes err through.
// The transition is best-effort: a concurrent cancellation may already have
// made the session terminal, in which case only the registry entry is left to
// clean up.
func (o *Orchestrator) fail(sess *session.Session, err error) error {
	if terr := sess.To(session.StateFailed); terr == nil {
		sess.ReleaseHandle()
	}
	o.store.Remove(sess.ID)
	o.log.Error("session failed",
		logger.String("session_id", sess.ID),
		logger.Error(err))
	return err
}

// finish completes the session successfully and tears it down.
func (o *Orchestrator) finish(ctx context.Context, sess *session.Session, rec *domain.StatusRecord) {
	sess.SetResult(rec)
	_ = sess.To(session.StateCompleted)
	sess.ReleaseHandle()
	o.store.Remove(sess.ID)

	if o.archive != nil {
		if err := o.archive.SaveResult(ctx, sess.Query, rec); err != nil {
			o.log.Warn("failed to archive result",
				logger.String("session_id", sess.ID),
				logger.Error(err))
		}
	}

	o.log.Info("status check completed",
		logger.String("session_id", sess.ID),
		logger.String("status", rec.Status))
}
