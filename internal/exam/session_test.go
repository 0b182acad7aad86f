package exam

import (
	"testing"
	"time"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewSession(1, 10, 4, clock), clock
}

func pickAndEnter(t *testing.T, s *Session, clock *fakeClock, sectionID uint, limit int) {
	t.Helper()
	if err := s.Pick(sectionID); err != nil {
		t.Fatalf("pick section %d: %v", sectionID, err)
	}
	clock.advance(TransitionDelay)
	if _, err := s.Enter(sectionID, limit); err != nil {
		t.Fatalf("enter section %d: %v", sectionID, err)
	}
}

func TestSessionHappyPath(t *testing.T) {
	s, clock := newTestSession(t)

	if s.State() != StateSelection {
		t.Fatalf("new session must start in selection, got %s", s.State())
	}

	pickAndEnter(t, s, clock, 101, 60)
	if s.State() != StateExam {
		t.Fatalf("expected exam state, got %s", s.State())
	}

	s.Answers.Set(1, WholeValue, 0, "B")
	id, err := s.FinishSection()
	if err != nil || id != 101 {
		t.Fatalf("finish: id=%d err=%v", id, err)
	}
	if s.State() != StateSelection {
		t.Fatalf("expected selection after finish, got %s", s.State())
	}

	snap, completed, err := s.SubmitSnapshot(false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if completed != 1 || snap[1] != "B" {
		t.Fatalf("unexpected snapshot: completed=%d snap=%v", completed, snap)
	}
}

func TestSessionTransitionGating(t *testing.T) {
	s, clock := newTestSession(t)

	// entering straight from the picker, with nothing picked, is rejected
	if _, err := s.Enter(101, 60); err != ErrNoSectionPicked {
		t.Fatalf("expected ErrNoSectionPicked, got %v", err)
	}

	if err := s.Pick(101); err != nil {
		t.Fatalf("pick: %v", err)
	}

	// entering before the interstitial elapses is rejected
	if _, err := s.Enter(101, 60); err != ErrTransitionPending {
		t.Fatalf("expected ErrTransitionPending, got %v", err)
	}

	// entering a different section than picked is rejected
	clock.advance(TransitionDelay)
	if _, err := s.Enter(102, 60); err != ErrSectionMismatch {
		t.Fatalf("expected ErrSectionMismatch, got %v", err)
	}

	if _, err := s.Enter(101, 60); err != nil {
		t.Fatalf("enter after delay: %v", err)
	}
}

func TestSessionCompletedSectionCannotReenter(t *testing.T) {
	s, clock := newTestSession(t)

	pickAndEnter(t, s, clock, 101, 60)
	if _, err := s.FinishSection(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// repeated pick attempts for a completed section are all rejected
	for i := 0; i < 3; i++ {
		if err := s.Pick(101); err != ErrSectionCompleted {
			t.Fatalf("attempt %d: expected ErrSectionCompleted, got %v", i, err)
		}
	}

	// the completed set only grows
	pickAndEnter(t, s, clock, 102, 60)
	if _, err := s.ExitSection(); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if got := s.CompletedSections(); len(got) != 1 || got[0] != 101 {
		t.Fatalf("completed set changed unexpectedly: %v", got)
	}
}

func TestSessionExpiryKeepsAnswers(t *testing.T) {
	// one-minute section, one answer in the first blank, timer runs out
	s, clock := newTestSession(t)
	pickAndEnter(t, s, clock, 101, 1)

	s.Answers.Set(7, 0, 2, "Paris")

	if _, due := s.ExpireSectionIfDue(); due {
		t.Fatal("section must not expire before its limit")
	}
	clock.advance(time.Minute)
	id, due := s.ExpireSectionIfDue()
	if !due || id != 101 {
		t.Fatalf("expected section 101 to expire, got id=%d due=%v", id, due)
	}
	if s.State() != StateSelection {
		t.Fatalf("expiry must return to selection, got %s", s.State())
	}
	if !s.IsCompleted(101) {
		t.Fatal("expired section must be marked completed")
	}

	got, _ := s.Answers.Get(7)
	if got != "Paris," {
		t.Fatalf("answers must survive expiry: got %q", got)
	}

	sc := Score(KeyedQuestion{
		ID:            7,
		QuestionType:  TypeGapFill,
		QuestionText:  "The capital is [[1]] and it was founded in [[2]].",
		CorrectAnswer: "paris, 1889",
		Points:        1,
	}, got)
	if sc.Earned != 0.5 {
		t.Fatalf("expected half credit after expiry, got %v", sc.Earned)
	}
}

func TestSessionExitDoesNotComplete(t *testing.T) {
	s, clock := newTestSession(t)
	pickAndEnter(t, s, clock, 101, 60)
	s.Answers.Set(1, WholeValue, 0, "kept")

	id, err := s.ExitSection()
	if err != nil || id != 101 {
		t.Fatalf("exit: id=%d err=%v", id, err)
	}
	if s.IsCompleted(101) {
		t.Fatal("exited section must stay re-attemptable")
	}
	if got, _ := s.Answers.Get(1); got != "kept" {
		t.Fatalf("answers must survive exit: %q", got)
	}

	// re-entry restarts the countdown from the full limit
	pickAndEnter(t, s, clock, 101, 60)
	_, timer, ok := s.ActiveSection()
	if !ok {
		t.Fatal("expected an active section")
	}
	if got := timer.Remaining(clock.Now()); got != time.Hour {
		t.Fatalf("re-entry must restart the timer, got %v", got)
	}
}

func TestSessionSubmitGuards(t *testing.T) {
	s, clock := newTestSession(t)

	if _, _, err := s.SubmitSnapshot(false); err != ErrNothingCompleted {
		t.Fatalf("expected ErrNothingCompleted, got %v", err)
	}

	pickAndEnter(t, s, clock, 101, 60)
	if _, _, err := s.SubmitSnapshot(false); err != ErrNothingCompleted {
		t.Fatalf("submit mid-exam with nothing completed: expected ErrNothingCompleted, got %v", err)
	}
	if _, err := s.FinishSection(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	pickAndEnter(t, s, clock, 102, 60)
	// from exam state a normal submit is rejected, a forced one (global
	// timer expiry) is not
	if _, _, err := s.SubmitSnapshot(false); err != ErrNotInSelection {
		t.Fatalf("expected ErrNotInSelection, got %v", err)
	}
	if _, n, err := s.SubmitSnapshot(true); err != nil || n != 1 {
		t.Fatalf("forced submit: n=%d err=%v", n, err)
	}
}

func TestSessionStarted(t *testing.T) {
	s, clock := newTestSession(t)
	if s.Started() {
		t.Fatal("fresh session is not started")
	}
	pickAndEnter(t, s, clock, 101, 60)
	if !s.Started() {
		t.Fatal("active exam counts as started")
	}
	if _, err := s.FinishSection(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !s.Started() {
		t.Fatal("a completed section counts as started")
	}
}
