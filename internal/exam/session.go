package exam

import (
	"errors"
	"sync"
	"time"
)

// State is the phase a session is in. A session starts on the section picker,
// passes through a short non-interactive transition when a section is picked,
// and is "exam" while exactly one section is being taken.
type State string

const (
	StateSelection  State = "selection"
	StateTransition State = "transition"
	StateExam       State = "exam"
)

// TransitionDelay is the fixed interstitial shown between picking a section
// and the section actually starting. Entering before it elapses is rejected.
const TransitionDelay = 4 * time.Second

var (
	ErrNotInSelection    = errors.New("session is not on the section picker")
	ErrNotInExam         = errors.New("no section is currently active")
	ErrNoSectionPicked   = errors.New("no section has been picked for entry")
	ErrSectionCompleted  = errors.New("section already completed in this session")
	ErrSectionMismatch   = errors.New("section does not match the picked section")
	ErrTransitionPending = errors.New("section transition has not elapsed yet")
	ErrNothingCompleted  = errors.New("no section has been completed yet")
)

// Session is the in-memory state machine of one exam attempt: which sections
// are done, which one is active, its countdown deadline, and the answer
// sheet. All methods are safe for concurrent use; time is read through the
// injected Clock.
type Session struct {
	UserID  uint
	TestID  uint
	Answers *AnswerSheet

	clock Clock

	mu             sync.Mutex
	state          State
	pendingSection uint
	pickedAt       time.Time
	activeSection  uint
	timer          SectionTimer
	completed      []uint
	completedSet   map[uint]bool
	totalSections  int
}

// NewSession begins a session in the selection state.
func NewSession(userID, testID uint, totalSections int, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock()
	}
	return &Session{
		UserID:        userID,
		TestID:        testID,
		Answers:       NewAnswerSheet(),
		clock:         clock,
		state:         StateSelection,
		completedSet:  make(map[uint]bool),
		totalSections: totalSections,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pick moves selection -> transition for a section that has not been
// completed yet. One attempt per section per session: completed sections
// cannot be re-entered.
func (s *Session) Pick(sectionID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelection {
		return ErrNotInSelection
	}
	if s.completedSet[sectionID] {
		return ErrSectionCompleted
	}
	s.state = StateTransition
	s.pendingSection = sectionID
	s.pickedAt = s.clock.Now()
	return nil
}

// Enter moves transition -> exam once the interstitial delay has elapsed and
// starts the section countdown from the full time limit.
func (s *Session) Enter(sectionID uint, limitMinutes int) (SectionTimer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTransition {
		return SectionTimer{}, ErrNoSectionPicked
	}
	if s.pendingSection != sectionID {
		return SectionTimer{}, ErrSectionMismatch
	}
	now := s.clock.Now()
	if now.Sub(s.pickedAt) < TransitionDelay {
		return SectionTimer{}, ErrTransitionPending
	}

	s.state = StateExam
	s.activeSection = sectionID
	s.pendingSection = 0
	s.timer = StartSectionTimer(now, limitMinutes)
	return s.timer, nil
}

// FinishSection marks the active section completed and returns to selection.
// Entered answers stay on the sheet; only the working set is discarded.
func (s *Session) FinishSection() (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExam {
		return 0, ErrNotInExam
	}
	id := s.activeSection
	s.markCompleted(id)
	s.toSelection()
	return id, nil
}

// ExpireSectionIfDue finishes the active section when its countdown has run
// out. Reports the section id and whether an expiry happened.
func (s *Session) ExpireSectionIfDue() (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExam || !s.timer.Expired(s.clock.Now()) {
		return 0, false
	}
	id := s.activeSection
	s.markCompleted(id)
	s.toSelection()
	return id, true
}

// ExitSection abandons the active section without marking it completed, so
// it can be re-attempted. The section countdown is discarded; a re-entry
// restarts from the full limit.
func (s *Session) ExitSection() (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateExam {
		return 0, ErrNotInExam
	}
	id := s.activeSection
	s.toSelection()
	return id, nil
}

// AbortPending cancels a picked-but-not-entered section, returning to
// selection. Used when the global timer fires during the interstitial.
func (s *Session) AbortPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateTransition {
		s.toSelection()
	}
}

func (s *Session) markCompleted(id uint) {
	if !s.completedSet[id] {
		s.completedSet[id] = true
		s.completed = append(s.completed, id)
	}
}

func (s *Session) toSelection() {
	s.state = StateSelection
	s.activeSection = 0
	s.pendingSection = 0
	s.timer = SectionTimer{}
}

// ActiveSection returns the section currently being taken and its timer.
func (s *Session) ActiveSection() (uint, SectionTimer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateExam {
		return 0, SectionTimer{}, false
	}
	return s.activeSection, s.timer, true
}

// IsCompleted reports whether a section was finished in this session.
func (s *Session) IsCompleted(sectionID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedSet[sectionID]
}

// CompletedSections returns the finished section ids in completion order.
func (s *Session) CompletedSections() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, len(s.completed))
	copy(out, s.completed)
	return out
}

func (s *Session) TotalSections() int { return s.totalSections }

// Started reports whether the user is actively taking a section or has
// already completed at least one. This is the condition under which a global
// timer expiry forces submission instead of a silent budget reset.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateExam || len(s.completed) > 0
}

// SubmitSnapshot validates that the session can be finally submitted and
// returns the answer snapshot plus the completion summary. The session is
// only discarded by the caller after the result write succeeds, so a failed
// write loses nothing.
func (s *Session) SubmitSnapshot(force bool) (map[uint]string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.completed) == 0 {
		return nil, 0, ErrNothingCompleted
	}
	if !force && s.state != StateSelection {
		return nil, 0, ErrNotInSelection
	}
	return s.Answers.Snapshot(), len(s.completed), nil
}
