package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/session"
)

func TestReaperSweep(t *testing.T) {
	log := logger.New("error", false)
	store := session.NewStore(log)

	s := store.Create(domain.Query{
		Location:       "ANKARA",
		ApplicationID:  "AA00EILA2X",
		PassportNumber: "U12345678",
		Surname:        "YILMAZ",
	}, 0)
	store.Release(s)

	// Generous timeout: nothing to evict.
	rp := NewReaper(store, log, time.Hour, time.Hour)
	rp.Sweep()
	if store.Len() != 1 {
		t.Fatalf("fresh session evicted")
	}

	// Zero means "use default", so pick the smallest positive timeout and
	// wait it out.
	rp = NewReaper(store, log, time.Hour, time.Nanosecond)
	time.Sleep(time.Millisecond)
	rp.Sweep()
	if store.Len() != 0 {
		t.Fatalf("idle session survived the sweep")
	}
	if s.State() != session.StateExpired {
		t.Errorf("state = %s, want EXPIRED", s.State())
	}
	if _, err := store.Get(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestReaperStartStop(t *testing.T) {
	log := logger.New("error", false)
	store := session.NewStore(log)

	rp := NewReaper(store, log, time.Millisecond, time.Nanosecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rp.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s := store.Create(domain.Query{
		Location:       "ANKARA",
		ApplicationID:  "AA00EILA2X",
		PassportNumber: "U12345678",
		Surname:        "YILMAZ",
	}, 0)
	store.Release(s)

	deadline := time.After(time.Second)
	for store.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("background sweep never evicted the session")
		case <-time.After(5 * time.Millisecond):
		}
	}
	rp.Stop()
}
