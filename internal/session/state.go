package session

// State is the lifecycle state of one status-check session.
type State string

const (
	// StateCreated: browser opened, form not yet filled.
	StateCreated State = "CREATED"
	// StateCaptchaPresented: form filled, CAPTCHA retrieved, awaiting answer.
	StateCaptchaPresented State = "CAPTCHA_PRESENTED"
	// StateSubmitted: answer sent, awaiting the site's verdict.
	StateSubmitted State = "SUBMITTED"
	// StateCompleted: status extracted. Terminal.
	StateCompleted State = "COMPLETED"
	// StateCaptchaRejected: site refused the answer. Terminal for the manual
	// flow; the automatic flow loops back to CAPTCHA_PRESENTED while retries
	// remain.
	StateCaptchaRejected State = "CAPTCHA_REJECTED"
	// StateFailed: unrecoverable. Terminal.
	StateFailed State = "FAILED"
	// StateCancelled: explicit client cancellation. Terminal.
	StateCancelled State = "CANCELLED"
	// StateExpired: idle-timeout eviction. Terminal.
	StateExpired State = "EXPIRED"
)

// transitions is the forward edge set of the lifecycle. FAILED, CANCELLED and
// EXPIRED are additionally reachable from every non-terminal state (adapter
// errors, client cancellation and eviction can strike at any step), handled
// in CanTransition rather than listed per-state.
var transitions = map[State][]State{
	StateCreated:          {StateCaptchaPresented},
	StateCaptchaPresented: {StateSubmitted},
	StateSubmitted:        {StateCompleted, StateCaptchaRejected},
	StateCaptchaRejected:  {StateCaptchaPresented},
}

// Terminal reports whether no further operations are legal in s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateExpired:
		return true
	}
	return false
}

// CanTransition reports whether s -> next is a legal lifecycle edge.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StateFailed, StateCancelled, StateExpired:
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}
