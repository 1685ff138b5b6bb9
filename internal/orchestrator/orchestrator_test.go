package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ceacwatch/ceacwatch/internal/browser"
	"github.com/ceacwatch/ceacwatch/internal/domain"
	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/session"
	"github.com/ceacwatch/ceacwatch/internal/solver"
)

const goodPopup = "Application Received\n" +
	"Application ID or Case Number: AA00EILA2X\n" +
	"Case Created: 08-Jul-2025\n" +
	"Case Last Updated: 21-Jul-2025\n" +
	"Your case is open and ready for your interview."

// fakeHandle scripts the page: the CAPTCHA rotates on Refresh and submissions
// are judged against the current challenge.
type fakeHandle struct {
	challenge   atomic.Int32 // rotated by Refresh
	correct     func(challenge int32, answer string) bool
	submissions []string
	refreshes   int
	closes      atomic.Int32
	submitErr   error // overrides the correct-answer check when set
}

func (f *fakeHandle) CaptchaImage(context.Context) ([]byte, error) {
	return []byte(fmt.Sprintf("captcha-%d", f.challenge.Load())), nil
}

func (f *fakeHandle) SubmitCaptcha(_ context.Context, answer string) (string, error) {
	f.submissions = append(f.submissions, answer)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if f.correct != nil && !f.correct(f.challenge.Load(), answer) {
		return "", fmt.Errorf("%w: The characters you entered did not match", domain.ErrCaptchaRejected)
	}
	return goodPopup, nil
}

func (f *fakeHandle) Refresh(context.Context) error {
	f.refreshes++
	f.challenge.Add(1)
	return nil
}

func (f *fakeHandle) Screenshot(context.Context) ([]byte, error) { return []byte("screenshot"), nil }

func (f *fakeHandle) Close() error {
	f.closes.Add(1)
	return nil
}

type fakeBrowser struct {
	handle  *fakeHandle
	openErr error
	opens   int
}

func (f *fakeBrowser) Open(_ context.Context, _ domain.Query) (browser.Handle, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.handle, nil
}

// solverFunc adapts a func to solver.Solver.
type solverFunc func(ctx context.Context, image []byte) (string, error)

func (f solverFunc) Solve(ctx context.Context, image []byte) (string, error) { return f(ctx, image) }

func testQuery() domain.Query {
	return domain.Query{
		Location:       "ANKARA",
		ApplicationID:  "AA00EILA2X",
		PassportNumber: "U12345678",
		Surname:        "YILMAZ",
	}
}

func newTestOrchestrator(b browser.Browser, s solver.Solver) *Orchestrator {
	log := logger.New("error", false)
	return New(session.NewStore(log), b, s, nil, log)
}

func TestStartPresentsCaptcha(t *testing.T) {
	h := &fakeHandle{}
	o := newTestOrchestrator(&fakeBrowser{handle: h}, nil)

	res, err := o.Start(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.SessionID == "" {
		t.Error("empty session id")
	}
	if len(res.CaptchaImage) == 0 {
		t.Error("empty captcha image")
	}

	sess, err := o.Store().Get(res.SessionID)
	if err != nil {
		t.Fatalf("session not registered: %v", err)
	}
	if sess.State() != session.StateCaptchaPresented {
		t.Errorf("state = %s, want CAPTCHA_PRESENTED", sess.State())
	}
}

func TestStartRejectsInvalidInput(t *testing.T) {
	b := &fakeBrowser{handle: &fakeHandle{}}
	o := newTestOrchestrator(b, nil)

	_, err := o.Start(context.Background(), domain.Query{Location: "ANKARA"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if b.opens != 0 {
		t.Error("browser opened despite invalid input")
	}
	if o.Store().Len() != 0 {
		t.Error("session leaked on invalid input")
	}
}

func TestStartBrowserFailure(t *testing.T) {
	o := newTestOrchestrator(&fakeBrowser{openErr: errors.New("site unreachable")}, nil)

	if _, err := o.Start(context.Background(), testQuery()); err == nil {
		t.Fatal("expected error")
	}
	if o.Store().Len() != 0 {
		t.Error("failed session left in store")
	}
}

func TestSubmitCorrectAnswer(t *testing.T) {
	h := &fakeHandle{correct: func(_ int32, a string) bool { return a == "A7K2M" }}
	o := newTestOrchestrator(&fakeBrowser{handle: h}, nil)

	started, err := o.Start(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	res, err := o.Submit(context.Background(), started.SessionID, "A7K2M")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rec := res.Record
	if rec.Status != "Application Received" ||
		rec.CaseNumber != "AA00EILA2X" ||
		rec.CaseCreated != "08-Jul-2025" ||
		rec.CaseLastUpdated != "21-Jul-2025" ||
		!strings.Contains(rec.Description, "open and ready") {
		t.Errorf("incomplete record: %+v", rec)
	}
	if len(res.Screenshot) == 0 {
		t.Error("missing screenshot")
	}
	if h.closes.Load() != 1 {
		t.Errorf("handle closed %d times, want 1", h.closes.Load())
	}
	if _, err := o.Store().Get(started.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("completed session still registered")
	}
}

func TestSubmitWrongAnswer(t *testing.T) {
	h := &fakeHandle{correct: func(_ int32, a string) bool { return false }}
	o := newTestOrchestrator(&fakeBrowser{handle: h}, nil)

	started, err := o.Start(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = o.Submit(context.Background(), started.SessionID, "WRONG")
	if !errors.Is(err, domain.ErrCaptchaRejected) {
		t.Fatalf("err = %v, want ErrCaptchaRejected", err)
	}
	// Manual-flow rejection is terminal: session gone, handle released.
	if _, err := o.Store().Get(started.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Error("rejected session still registered")
	}
	if h.closes.Load() != 1 {
		t.Errorf("handle closed %d times, want 1", h.closes.Load())
	}
}

func TestSubmitUnknownSession(t *testing.T) {
	o := newTestOrchestrator(&fakeBrowser{handle: &fakeHandle{}}, nil)
	if _, err := o.Submit(context.Background(), "nope", "ABC"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSubmitWrongState(t *testing.T) {
	o := newTestOrchestrator(&fakeBrowser{handle: &fakeHandle{}}, nil)

	// A session stuck in CREATED (no CAPTCHA presented yet).
	sess := o.Store().Create(testQuery(), 0)
	o.Store().Release(sess)

	_, err := o.Submit(context.Background(), sess.ID, "ABC")
	if !errors.Is(err, domain.ErrInvalidSessionState) {
		t.Fatalf("err = %v, want ErrInvalidSessionState", err)
	}
	if sess.State() != session.StateCreated {
		t.Errorf("state mutated by rejected operation: %s", sess.State())
	}
}

func TestCancelThenSubmit(t *testing.T) {
	h := &fakeHandle{}
	o := newTestOrchestrator(&fakeBrowser{handle: h}, nil)

	started, err := o.Start(context.Background(), testQuery())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := o.Cancel(started.SessionID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if h.closes.Load() != 1 {
		t.Errorf("handle closed %d times, want 1", h.closes.Load())
	}
	if _, err := o.Submit(context.Background(), started.SessionID, "ABC"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("submit after cancel err = %v, want ErrSessionNotFound", err)
	}
}

func TestCheckSolverUnavailable(t *testing.T) {
	b := &fakeBrowser{handle: &fakeHandle{}}
	o := newTestOrchestrator(b, nil)

	_, err := o.Check(context.Background(), testQuery(), 3)
	if !errors.Is(err, domain.ErrSolverUnavailable) {
		t.Fatalf("err = %v, want ErrSolverUnavailable", err)
	}
	if b.opens != 0 {
		t.Error("browser opened despite missing solver")
	}
}

func TestCheckFirstTrySuccess(t *testing.T) {
	h := &fakeHandle{correct: func(_ int32, a string) bool { return true }}
	o := newTestOrchestrator(&fakeBrowser{handle: h},
		solverFunc(func(_ context.Context, img []byte) (string, error) { return "GUESS", nil }))

	res, err := o.Check(context.Background(), testQuery(), 3)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Record.Status != "Application Received" {
		t.Errorf("status = %q", res.Record.Status)
	}
	if len(h.submissions) != 1 {
		t.Errorf("submissions = %d, want 1", len(h.submissions))
	}
	if h.closes.Load() != 1 {
		t.Errorf("handle closed %d times, want 1", h.closes.Load())
	}
	if o.Store().Len() != 0 {
		t.Error("session leaked after completion")
	}
}

// The retry budget: max_retries = N allows at most N+1 submissions, each
// against a freshly rotated CAPTCHA.
func TestCheckMaxRetriesExceeded(t *testing.T) {
	h := &fakeHandle{correct: func(_ int32, _ string) bool { return false }}
	solved := make(map[string]bool)
	o := newTestOrchestrator(&fakeBrowser{handle: h},
		solverFunc(func(_ context.Context, img []byte) (string, error) {
			solved[string(img)] = true
			return "guess-" + string(img), nil
		}))

	_, err := o.Check(context.Background(), testQuery(), 3)
	if !errors.Is(err, domain.ErrMaxRetriesExceeded) {
		t.Fatalf("err = %v, want ErrMaxRetriesExceeded", err)
	}
	if len(h.submissions) != 4 {
		t.Errorf("submissions = %d, want exactly 4 (N+1)", len(h.submissions))
	}
	if h.refreshes != 3 {
		t.Errorf("refreshes = %d, want 3 (one per retry)", h.refreshes)
	}
	// Every attempt solved a distinct challenge; no stale re-submission.
	if len(solved) != 4 {
		t.Errorf("distinct challenges solved = %d, want 4", len(solved))
	}
	if h.closes.Load() != 1 {
		t.Errorf("handle closed %d times, want 1", h.closes.Load())
	}
	if o.Store().Len() != 0 {
		t.Error("failed session still registered")
	}
}

func TestCheckRecoversOnRetry(t *testing.T) {
	// Wrong on challenge 0, right from challenge 1 onward.
	h := &fakeHandle{correct: func(c int32, _ string) bool { return c > 0 }}
	o := newTestOrchestrator(&fakeBrowser{handle: h},
		solverFunc(func(_ context.Context, img []byte) (string, error) { return string(img), nil }))

	res, err := o.Check(context.Background(), testQuery(), 3)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Record.CaseNumber != "AA00EILA2X" {
		t.Errorf("case_number = %q", res.Record.CaseNumber)
	}
	if len(h.submissions) != 2 {
		t.Errorf("submissions = %d, want 2", len(h.submissions))
	}
	if h.submissions[0] == h.submissions[1] {
		t.Error("retry re-submitted the same challenge answer")
	}
}

func TestCheckUnrecoverableSubmitError(t *testing.T) {
	h := &fakeHandle{submitErr: errors.New("submission rejected: Invalid Application ID")}
	o := newTestOrchestrator(&fakeBrowser{handle: h},
		solverFunc(func(_ context.Context, _ []byte) (string, error) { return "GUESS", nil }))

	_, err := o.Check(context.Background(), testQuery(), 3)
	if err == nil || errors.Is(err, domain.ErrMaxRetriesExceeded) {
		t.Fatalf("err = %v, want unrecoverable submit error", err)
	}
	if len(h.submissions) != 1 {
		t.Errorf("submissions = %d, want 1 (no retry on non-captcha errors)", len(h.submissions))
	}
	if o.Store().Len() != 0 {
		t.Error("failed session still registered")
	}
}

func TestCheckSolverFailure(t *testing.T) {
	h := &fakeHandle{}
	o := newTestOrchestrator(&fakeBrowser{handle: h},
		solverFunc(func(_ context.Context, _ []byte) (string, error) { return "", errors.New("model not loaded") }))

	if _, err := o.Check(context.Background(), testQuery(), 3); err == nil {
		t.Fatal("expected error")
	}
	if len(h.submissions) != 0 {
		t.Error("submitted despite solver failure")
	}
	if h.closes.Load() != 1 {
		t.Errorf("handle closed %d times, want 1", h.closes.Load())
	}
}
