package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/logger"
)

// DefaultIdleTimeout matches the documented 5 minute session lifetime.
const DefaultIdleTimeout = 5 * time.Minute

// Summary is the diagnostic view of one live session.
type Summary struct {
	SessionID string  `json:"session_id"`
	State     State   `json:"state"`
	AgeSec    float64 `json:"age"`
}

// Store is the registry of in-flight sessions.
//
// The map lock is held only for map surgery; all per-session serialization
// happens on the session's own operation lock so a slow browser round-trip on
// one session never blocks requests for another.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      logger.Logger
}

// NewStore creates an empty registry.
func NewStore(log logger.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		log:      log,
	}
}

// Create allocates and registers a new session in state CREATED.
//
// The session is returned with its operation lock already held, so the
// creating orchestrator can finish browser setup before anyone else
// (including the eviction sweep) can see it mid-construction. The caller
// must Release it.
func (st *Store) Create(query domain.Query, maxRetries int) *Session {
	s := newSession(uuid.NewString(), query, maxRetries)
	s.opMu.Lock()

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.log.Info("session created",
		logger.String("session_id", s.ID),
		logger.String("location", query.Location))
	return s
}

// Get returns a session by id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return s, nil
}

// Acquire fetches a session and takes its operation lock. A session supports
// one in-flight operation at a time; if another operation holds the lock this
// fails fast with ErrSessionBusy instead of queueing behind a multi-second
// browser round-trip.
func (st *Store) Acquire(id string) (*Session, error) {
	s, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.opMu.TryLock() {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionBusy, id)
	}
	// The session may have been evicted between the map read and the lock.
	if _, err := st.Get(id); err != nil {
		s.opMu.Unlock()
		return nil, err
	}
	return s, nil
}

// Release refreshes the idle clock and drops the operation lock.
func (st *Store) Release(s *Session) {
	s.Touch()
	s.opMu.Unlock()
}

// Remove unregisters the session. Handle teardown is the session's own job;
// Remove only makes the id invalid for further lookups.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of registered sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// List returns diagnostic summaries for every registered session.
func (st *Store) List() []Summary {
	st.mu.RLock()
	snapshot := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		snapshot = append(snapshot, s)
	}
	st.mu.RUnlock()

	now := time.Now()
	out := make([]Summary, 0, len(snapshot))
	for _, s := range snapshot {
		out = append(out, Summary{
			SessionID: s.ID,
			State:     s.State(),
			AgeSec:    s.Age(now).Seconds(),
		})
	}
	return out
}

// EvictIdle removes every session idle for longer than timeout, releasing its
// browser handle. Sessions with an operation in flight are skipped: the
// operation lock doubles as the eviction guard, and the next sweep re-checks
// them (the operation will have refreshed the idle clock anyway). Returns the
// number of sessions evicted.
func (st *Store) EvictIdle(timeout time.Duration) int {
	st.mu.RLock()
	snapshot := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		snapshot = append(snapshot, s)
	}
	st.mu.RUnlock()

	now := time.Now()
	evicted := 0
	for _, s := range snapshot {
		if s.IdleFor(now) < timeout {
			continue
		}
		if !s.opMu.TryLock() {
			continue // in-flight operation; re-check next sweep
		}
		// Re-check idleness under the lock: an operation may have finished
		// (and touched the session) between the snapshot and here.
		if s.IdleFor(time.Now()) < timeout {
			s.opMu.Unlock()
			continue
		}
		if err := s.expire(); err == nil {
			st.Remove(s.ID)
			evicted++
			st.log.Info("session expired",
				logger.String("session_id", s.ID),
				logger.Duration("idle", s.IdleFor(time.Now())))
		} else {
			// Already terminal; just drop the registry entry.
			st.Remove(s.ID)
		}
		s.opMu.Unlock()
	}
	return evicted
}

// Shutdown cancels every remaining session and releases its handle. Used on
// process exit so no Chrome tab outlives the service.
func (st *Store) Shutdown() {
	st.mu.Lock()
	remaining := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range remaining {
		_ = s.Cancel()
	}
	if len(remaining) > 0 {
		st.log.Info("released remaining sessions on shutdown",
			logger.Int("count", len(remaining)))
	}
}
