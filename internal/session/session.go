// Package session holds the stateful heart of the checker: per-check session
// lifecycle, the legal-transition table, and the concurrency-safe registry
// with idle eviction.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/browser"
	"github.com/ceacwatch/ceacwatch/internal/domain"
)

// Session is one in-progress status check: one query, one browser handle, one
// walk through the state machine.
//
// Two locks with distinct jobs: opMu serializes operations (one in-flight
// operation per session, TryLock so a second caller fails fast instead of
// queueing) and also guards eviction; mu guards the small mutable fields so
// diagnostics can read state while an operation holds opMu for seconds.
type Session struct {
	ID        string
	Query     domain.Query
	CreatedAt time.Time

	opMu sync.Mutex

	mu         sync.RWMutex
	state      State
	lastActive time.Time
	retryCount int
	maxRetries int
	result     *domain.StatusRecord

	handle      browser.Handle
	releaseOnce sync.Once
}

func newSession(id string, query domain.Query, maxRetries int) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Query:      query,
		CreatedAt:  now,
		state:      StateCreated,
		lastActive: now,
		maxRetries: maxRetries,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// To performs a state transition, failing without mutation if the edge is not
// legal from the current state.
func (s *Session) To(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CanTransition(next) {
		return fmt.Errorf("%w: cannot go from %s to %s", domain.ErrInvalidSessionState, s.state, next)
	}
	s.state = next
	s.lastActive = time.Now()
	return nil
}

// Require fails unless the session is currently in want. Used by operations
// to reject out-of-order calls before doing any browser work.
func (s *Session) Require(want State) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != want {
		return fmt.Errorf("%w: session is %s, operation requires %s", domain.ErrInvalidSessionState, s.state, want)
	}
	return nil
}

// Touch refreshes the idle clock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// IdleFor returns how long the session has gone without a successful
// operation.
func (s *Session) IdleFor(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastActive)
}

// Age returns time since creation.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// AttachHandle hands the session exclusive ownership of a live browser
// context.
func (s *Session) AttachHandle(h browser.Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

// Handle returns the owned browser context, or nil if none is attached.
func (s *Session) Handle() browser.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// ReleaseHandle closes the browser context. Idempotent: every terminal path
// calls it, and the handle must be closed exactly once.
func (s *Session) ReleaseHandle() {
	s.mu.RLock()
	h := s.handle
	s.mu.RUnlock()
	if h == nil {
		return
	}
	s.releaseOnce.Do(func() { _ = h.Close() })
}

// RetryCount returns CAPTCHA rejections seen so far (automatic flow).
func (s *Session) RetryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retryCount
}

// MaxRetries returns the retry budget (automatic flow).
func (s *Session) MaxRetries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxRetries
}

// IncRetry bumps the rejection counter and returns the new value.
func (s *Session) IncRetry() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retryCount++
	return s.retryCount
}

// SetResult records the terminal success payload.
func (s *Session) SetResult(rec *domain.StatusRecord) {
	s.mu.Lock()
	s.result = rec
	s.mu.Unlock()
}

// Result returns the terminal success payload, if any.
func (s *Session) Result() *domain.StatusRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Cancel moves the session to CANCELLED and releases the handle immediately,
// without taking the operation lock: cancellation must bite even while a
// long-running browser operation is in flight. Closing the handle aborts that
// operation; its result is discarded because every later transition it
// attempts fails against the terminal state.
func (s *Session) Cancel() error {
	if err := s.To(StateCancelled); err != nil {
		return err
	}
	s.ReleaseHandle()
	return nil
}

// expire is Cancel's sweep-driven twin. Caller holds opMu.
func (s *Session) expire() error {
	if err := s.To(StateExpired); err != nil {
		return err
	}
	s.ReleaseHandle()
	return nil
}
