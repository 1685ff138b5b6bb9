package session

import "testing"

func TestStateTransitions(t *testing.T) {
	legal := []struct {
		from, to State
	}{
		{StateCreated, StateCaptchaPresented},
		{StateCaptchaPresented, StateSubmitted},
		{StateSubmitted, StateCompleted},
		{StateSubmitted, StateCaptchaRejected},
		{StateSubmitted, StateFailed},
		{StateCaptchaRejected, StateCaptchaPresented},
		{StateCreated, StateCancelled},
		{StateCaptchaPresented, StateExpired},
		{StateCaptchaRejected, StateFailed},
		{StateSubmitted, StateCancelled},
	}
	for _, tc := range legal {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}

	illegal := []struct {
		from, to State
	}{
		{StateCreated, StateSubmitted},
		{StateCreated, StateCompleted},
		{StateCaptchaPresented, StateCompleted},
		{StateCaptchaPresented, StateCaptchaRejected},
		{StateCompleted, StateCaptchaPresented},
		{StateCompleted, StateCancelled},
		{StateFailed, StateCaptchaPresented},
		{StateCancelled, StateExpired},
		{StateExpired, StateCancelled},
		{StateCaptchaRejected, StateSubmitted},
		{StateCaptchaRejected, StateCompleted},
	}
	for _, tc := range illegal {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := []State{StateCompleted, StateFailed, StateCancelled, StateExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}

	nonTerminal := []State{StateCreated, StateCaptchaPresented, StateSubmitted, StateCaptchaRejected}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

// Every reachable state has a defined verdict for every possible next state:
// the transition function is total, no panics, no undefined combinations.
func TestTransitionTotality(t *testing.T) {
	all := []State{
		StateCreated, StateCaptchaPresented, StateSubmitted, StateCompleted,
		StateCaptchaRejected, StateFailed, StateCancelled, StateExpired,
	}
	for _, from := range all {
		for _, to := range all {
			_ = from.CanTransition(to)
			if from.Terminal() && from.CanTransition(to) {
				t.Errorf("terminal state %s must have no outgoing transitions (got %s)", from, to)
			}
		}
	}
}
