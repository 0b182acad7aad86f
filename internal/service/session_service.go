package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ielts_prep_backend/internal/exam"
	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/repository"
	"ielts_prep_backend/internal/util"
	"ielts_prep_backend/pkg/logger"
	"ielts_prep_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sessionKey struct {
	UserID uint
	TestID uint
}

// liveSession pairs the engine state machine with the loaded test and the
// wall-clock timers that fire expiry server-side.
type liveSession struct {
	Session *exam.Session
	Test    *model.Test // sections preloaded in order
	Global  exam.GlobalTimer

	sectionTimer *time.Timer
	globalTimer  *time.Timer
	lastTouched  time.Time
}

// ExamSessionService owns every in-flight exam attempt. Sessions live in
// memory keyed by user+test; the only durable piece is the global timer
// anchor in Redis, so a reconnecting user resumes the countdown but starts
// sections and answers afresh.
type ExamSessionService struct {
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
	ResultRepo   *repository.ResultRepository
	TimerRepo    *repository.TimerRepository
	Access       *AccessService
	Clock        exam.Clock

	mu       sync.Mutex
	sessions map[sessionKey]*liveSession
	stop     chan struct{}
}

func NewExamSessionService(
	testRepo *repository.TestRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	timerRepo *repository.TimerRepository,
	access *AccessService,
	clock exam.Clock,
) *ExamSessionService {
	if clock == nil {
		clock = exam.SystemClock()
	}
	return &ExamSessionService{
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		ResultRepo:   resultRepo,
		TimerRepo:    timerRepo,
		Access:       access,
		Clock:        clock,
		sessions:     make(map[sessionKey]*liveSession),
		stop:         make(chan struct{}),
	}
}

// SectionView is one row of the section picker.
type SectionView struct {
	ID           uint              `json:"id"`
	SectionType  model.SectionType `json:"sectionType"`
	TimeLimit    int               `json:"timeLimit"`
	OrderIndex   int               `json:"orderIndex"`
	Instructions string            `json:"instructions"`
	Completed    bool              `json:"completed"`
}

// SessionView is the section picker screen plus timer facts.
type SessionView struct {
	TestID                 uint           `json:"testId"`
	Title                  string         `json:"title"`
	Kind                   model.TestKind `json:"kind"`
	State                  exam.State     `json:"state"`
	Sections               []SectionView  `json:"sections"`
	CompletedCount         int            `json:"completedCount"`
	TotalSections          int            `json:"totalSections"`
	GlobalRemainingSeconds *int64         `json:"globalRemainingSeconds,omitempty"`
	CanSubmit              bool           `json:"canSubmit"`
}

// QuestionView is a question as delivered to the taker: no answer key, no
// explanation, plus the taker's current answer and the blank count derived
// from the text's placeholders.
type QuestionView struct {
	ID           uint            `json:"id"`
	QuestionType string          `json:"questionType"`
	QuestionText string          `json:"questionText"`
	Options      json.RawMessage `json:"options,omitempty"`
	Points       float64         `json:"points"`
	OrderIndex   int             `json:"orderIndex"`
	Blanks       int             `json:"blanks"`
	Answer       string          `json:"answer,omitempty"`
}

type PartView struct {
	ID            uint           `json:"id"`
	PartNumber    int            `json:"partNumber"`
	Passage       string         `json:"passage,omitempty"`
	AudioURL      string         `json:"audioUrl,omitempty"`
	PdfURL        string         `json:"pdfUrl,omitempty"`
	AudioDuration int            `json:"audioDuration,omitempty"`
	Questions     []QuestionView `json:"questions"`
}

// SectionPaper is the full paper of an entered section.
type SectionPaper struct {
	Section                 SectionView    `json:"section"`
	Parts                   []PartView     `json:"parts"`
	Questions               []QuestionView `json:"questions,omitempty"` // questions outside any part
	SectionRemainingSeconds int64          `json:"sectionRemainingSeconds"`
	GlobalRemainingSeconds  *int64         `json:"globalRemainingSeconds,omitempty"`
}

// TimerView answers the periodic timer poll.
type TimerView struct {
	State                   exam.State `json:"state"`
	ActiveSection           uint       `json:"activeSection,omitempty"`
	SectionRemainingSeconds *int64     `json:"sectionRemainingSeconds,omitempty"`
	GlobalRemainingSeconds  *int64     `json:"globalRemainingSeconds,omitempty"`
	CompletedSections       []uint     `json:"completedSections"`
	CanSubmit               bool       `json:"canSubmit"`
}

// StartSession opens (or resumes) a session for the test after passing the
// access gate, and reports the picker state. For a mock test the global
// countdown is recomputed from the persisted anchor, so reloads do not reset
// it.
func (s *ExamSessionService) StartSession(ctx context.Context, userID, testID uint) (*SessionView, error) {
	test, err := s.TestRepo.FindByIDWithSections(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if !test.IsPublished {
		return nil, util.ErrTestNotPublished
	}

	decision, err := s.Access.Check(userID, test)
	if err != nil {
		return nil, err
	}
	if derr := DecisionError(decision); derr != nil {
		return nil, derr
	}

	key := sessionKey{UserID: userID, TestID: testID}

	s.mu.Lock()
	ls, ok := s.sessions[key]
	if !ok {
		ls = &liveSession{
			Session: exam.NewSession(userID, testID, len(test.Sections), s.Clock),
			Test:    test,
			Global:  exam.NewGlobalTimer(sectionLimits(test)),
		}
		s.sessions[key] = ls
		monitoring.ActiveSessions.Inc()
	}
	ls.lastTouched = s.Clock.Now()
	s.mu.Unlock()

	view := s.buildSessionView(ls)
	if test.Kind == model.KindMock {
		remaining, err := s.globalRemaining(ctx, ls)
		if err != nil {
			return nil, err
		}
		secs := int64(remaining / time.Second)
		view.GlobalRemainingSeconds = &secs
	}
	return view, nil
}

// PickSection starts the interstitial before a section. The returned delay
// is how long the client must wait before entering.
func (s *ExamSessionService) PickSection(userID, testID, sectionID uint) (int, error) {
	ls, err := s.lookup(userID, testID)
	if err != nil {
		return 0, err
	}
	if findSection(ls.Test, sectionID) == nil {
		return 0, util.ErrSectionNotFound
	}
	if err := ls.Session.Pick(sectionID); err != nil {
		return 0, err
	}
	return int(exam.TransitionDelay / time.Second), nil
}

// EnterSection takes the session into the picked section once the
// interstitial has elapsed: the section countdown starts from the full
// limit, the paper is loaded, and on a mock test the global anchor is
// recorded if this is the first section ever entered.
func (s *ExamSessionService) EnterSection(ctx context.Context, userID, testID, sectionID uint) (*SectionPaper, error) {
	ls, err := s.lookup(userID, testID)
	if err != nil {
		return nil, err
	}
	section := findSection(ls.Test, sectionID)
	if section == nil {
		return nil, util.ErrSectionNotFound
	}

	timer, err := ls.Session.Enter(sectionID, section.TimeLimit)
	if err != nil {
		return nil, err
	}

	var globalSecs *int64
	if ls.Test.Kind == model.KindMock {
		remaining, gerr := s.anchorAndRemaining(ctx, ls)
		if gerr != nil {
			// entry already happened in memory; a Redis hiccup must not
			// kick the user out, the countdown re-syncs on the next poll
			logger.Log.Warn("global timer anchor unavailable",
				zap.Uint("userId", userID), zap.Uint("testId", testID), zap.Error(gerr))
		} else {
			v := int64(remaining / time.Second)
			globalSecs = &v
			s.armGlobalTimer(userID, testID, ls, remaining)
		}
	}
	s.armSectionTimer(userID, testID, ls, sectionID, timer.Remaining(s.Clock.Now()))

	paper, err := s.buildPaper(ls, section, timer)
	if err != nil {
		return nil, err
	}
	paper.GlobalRemainingSeconds = globalSecs
	return paper, nil
}

// SaveAnswer records one answer while a section is active. A negative
// position replaces the whole stored value; otherwise only that blank's
// comma segment is updated, padded out to the question's blank count.
func (s *ExamSessionService) SaveAnswer(userID, testID, questionID uint, position int, value string) error {
	ls, err := s.lookup(userID, testID)
	if err != nil {
		return err
	}
	sectionID, _, active := ls.Session.ActiveSection()
	if !active {
		return exam.ErrNotInExam
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if question.SectionID != sectionID {
		return util.ErrQuestionNotFound
	}

	ls.Session.Answers.Set(questionID, position, exam.BlankCount(question.QuestionText), value)
	return nil
}

// FinishSection completes the active section and returns to the picker.
func (s *ExamSessionService) FinishSection(userID, testID uint) (*SessionView, error) {
	ls, err := s.lookup(userID, testID)
	if err != nil {
		return nil, err
	}
	if _, err := ls.Session.FinishSection(); err != nil {
		return nil, err
	}
	s.disarmSectionTimer(ls)
	monitoring.SectionsCompleted.WithLabelValues("manual").Inc()
	return s.buildSessionView(ls), nil
}

// ExitSection abandons the active section without completing it, keeping
// every answer already entered. Re-entering later restarts the section
// countdown from the full limit.
func (s *ExamSessionService) ExitSection(userID, testID uint) (*SessionView, error) {
	ls, err := s.lookup(userID, testID)
	if err != nil {
		return nil, err
	}
	if _, err := ls.Session.ExitSection(); err != nil {
		return nil, err
	}
	s.disarmSectionTimer(ls)
	return s.buildSessionView(ls), nil
}

// TimerState answers the client's periodic poll. Expiries are also checked
// here so a missed timer callback cannot leave a dead section active.
func (s *ExamSessionService) TimerState(ctx context.Context, userID, testID uint) (*TimerView, error) {
	ls, err := s.lookup(userID, testID)
	if err != nil {
		return nil, err
	}

	if _, expired := ls.Session.ExpireSectionIfDue(); expired {
		s.disarmSectionTimer(ls)
		monitoring.SectionsCompleted.WithLabelValues("timer").Inc()
	}

	view := &TimerView{
		State:             ls.Session.State(),
		CompletedSections: ls.Session.CompletedSections(),
	}
	view.CanSubmit = len(view.CompletedSections) > 0 && view.State == exam.StateSelection

	if id, timer, active := ls.Session.ActiveSection(); active {
		secs := int64(timer.Remaining(s.Clock.Now()) / time.Second)
		view.ActiveSection = id
		view.SectionRemainingSeconds = &secs
	}

	if ls.Test.Kind == model.KindMock {
		remaining, gerr := s.globalRemaining(ctx, ls)
		if gerr == nil {
			secs := int64(remaining / time.Second)
			view.GlobalRemainingSeconds = &secs
		}
	}
	return view, nil
}

// Submit finalizes the attempt: the raw answer snapshot becomes a result
// row, the global anchor is cleared, and the session is dropped. If the
// write fails the session stays fully intact so the user can retry.
func (s *ExamSessionService) Submit(ctx context.Context, userID, testID uint) (*model.Result, error) {
	return s.submit(ctx, sessionKey{UserID: userID, TestID: testID}, false)
}

func (s *ExamSessionService) submit(ctx context.Context, key sessionKey, forced bool) (*model.Result, error) {
	s.mu.Lock()
	ls, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return nil, util.ErrSessionNotFound
	}

	snapshot, completed, err := ls.Session.SubmitSnapshot(forced)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	result := &model.Result{
		UserID:            key.UserID,
		TestID:            key.TestID,
		Answers:           raw,
		CompletedSections: completed,
		TotalSections:     ls.Session.TotalSections(),
		AutoSubmitted:     forced,
	}
	if err := s.ResultRepo.Create(result); err != nil {
		monitoring.SubmissionsTotal.WithLabelValues("failed").Inc()
		logger.Log.Error("result write failed, session kept for retry",
			zap.Uint("userId", key.UserID), zap.Uint("testId", key.TestID), zap.Error(err))
		return nil, util.ErrResultSaveFailed
	}

	if ls.Test.Kind == model.KindMock {
		if err := s.TimerRepo.ClearAnchor(ctx, key.UserID, key.TestID); err != nil {
			logger.Log.Warn("failed to clear global timer anchor",
				zap.Uint("userId", key.UserID), zap.Uint("testId", key.TestID), zap.Error(err))
		}
	}

	s.drop(key)
	if forced {
		monitoring.SubmissionsTotal.WithLabelValues("forced").Inc()
	} else {
		monitoring.SubmissionsTotal.WithLabelValues("ok").Inc()
	}
	return result, nil
}

// StartSweeper launches the background loop that drops sessions nobody has
// touched for maxIdle. Close stops it.
func (s *ExamSessionService) StartSweeper(interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep(maxIdle)
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *ExamSessionService) Close() {
	close(s.stop)
}

func (s *ExamSessionService) sweep(maxIdle time.Duration) {
	now := s.Clock.Now()
	s.mu.Lock()
	var stale []sessionKey
	for key, ls := range s.sessions {
		if now.Sub(ls.lastTouched) > maxIdle {
			stale = append(stale, key)
		}
	}
	s.mu.Unlock()

	for _, key := range stale {
		logger.Log.Info("dropping idle exam session",
			zap.Uint("userId", key.UserID), zap.Uint("testId", key.TestID))
		s.drop(key)
	}
}

func (s *ExamSessionService) lookup(userID, testID uint) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[sessionKey{UserID: userID, TestID: testID}]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	ls.lastTouched = s.Clock.Now()
	return ls, nil
}

func (s *ExamSessionService) drop(key sessionKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.sessions[key]
	if !ok {
		return
	}
	if ls.sectionTimer != nil {
		ls.sectionTimer.Stop()
	}
	if ls.globalTimer != nil {
		ls.globalTimer.Stop()
	}
	delete(s.sessions, key)
	monitoring.ActiveSessions.Dec()
}

// globalRemaining reads the anchor and computes the countdown. Without an
// anchor (nothing entered yet) or with a stale one the full budget is
// reported; a stale anchor is also cleared so the next first entry
// re-anchors cleanly.
func (s *ExamSessionService) globalRemaining(ctx context.Context, ls *liveSession) (time.Duration, error) {
	anchor, ok, err := s.TimerRepo.GetAnchor(ctx, ls.Session.UserID, ls.Session.TestID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return ls.Global.Budget, nil
	}
	remaining, valid := ls.Global.Remaining(anchor, s.Clock.Now())
	if !valid {
		if cerr := s.TimerRepo.ClearAnchor(ctx, ls.Session.UserID, ls.Session.TestID); cerr != nil {
			logger.Log.Warn("failed to clear stale anchor", zap.Error(cerr))
		}
	}
	return remaining, nil
}

// anchorAndRemaining is globalRemaining for section entry: if no anchor is
// recorded yet this entry is the start of the whole test, so the anchor is
// written now.
func (s *ExamSessionService) anchorAndRemaining(ctx context.Context, ls *liveSession) (time.Duration, error) {
	userID, testID := ls.Session.UserID, ls.Session.TestID
	now := s.Clock.Now()

	anchor, ok, err := s.TimerRepo.GetAnchor(ctx, userID, testID)
	if err != nil {
		return 0, err
	}
	if ok {
		if remaining, valid := ls.Global.Remaining(anchor, now); valid {
			return remaining, nil
		}
	}
	if err := s.TimerRepo.SetAnchor(ctx, userID, testID, now, ls.Global.Budget); err != nil {
		return 0, err
	}
	return ls.Global.Budget, nil
}

func (s *ExamSessionService) armSectionTimer(userID, testID uint, ls *liveSession, sectionID uint, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ls.sectionTimer != nil {
		ls.sectionTimer.Stop()
	}
	ls.sectionTimer = time.AfterFunc(after, func() {
		s.onSectionExpiry(userID, testID, sectionID)
	})
}

func (s *ExamSessionService) disarmSectionTimer(ls *liveSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ls.sectionTimer != nil {
		ls.sectionTimer.Stop()
		ls.sectionTimer = nil
	}
}

func (s *ExamSessionService) armGlobalTimer(userID, testID uint, ls *liveSession, after time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ls.globalTimer != nil {
		ls.globalTimer.Stop()
	}
	ls.globalTimer = time.AfterFunc(after, func() {
		s.onGlobalExpiry(sessionKey{UserID: userID, TestID: testID})
	})
}

func (s *ExamSessionService) onSectionExpiry(userID, testID uint, sectionID uint) {
	s.mu.Lock()
	ls, ok := s.sessions[sessionKey{UserID: userID, TestID: testID}]
	s.mu.Unlock()
	if !ok {
		return
	}
	if id, expired := ls.Session.ExpireSectionIfDue(); expired && id == sectionID {
		monitoring.SectionsCompleted.WithLabelValues("timer").Inc()
		logger.Log.Info("section auto-completed on expiry",
			zap.Uint("userId", userID), zap.Uint("testId", testID), zap.Uint("sectionId", sectionID))
	}
}

// onGlobalExpiry fires when the whole mock-test budget runs out. A session
// that actually got under way is force-submitted with whatever was answered;
// an untouched session just loses its stale anchor on the next read.
func (s *ExamSessionService) onGlobalExpiry(key sessionKey) {
	s.mu.Lock()
	ls, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return
	}
	if !ls.Session.Started() {
		return
	}

	if _, err := ls.Session.FinishSection(); err == nil {
		monitoring.SectionsCompleted.WithLabelValues("global_timer").Inc()
	}
	ls.Session.AbortPending()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.submit(ctx, key, true); err != nil {
		logger.Log.Error("forced submission failed",
			zap.Uint("userId", key.UserID), zap.Uint("testId", key.TestID), zap.Error(err))
	}
}

func (s *ExamSessionService) buildSessionView(ls *liveSession) *SessionView {
	completed := ls.Session.CompletedSections()
	view := &SessionView{
		TestID:         ls.Test.ID,
		Title:          ls.Test.Title,
		Kind:           ls.Test.Kind,
		State:          ls.Session.State(),
		CompletedCount: len(completed),
		TotalSections:  ls.Session.TotalSections(),
	}
	view.CanSubmit = view.CompletedCount > 0 && view.State == exam.StateSelection
	for _, sec := range ls.Test.Sections {
		view.Sections = append(view.Sections, SectionView{
			ID:           sec.ID,
			SectionType:  sec.SectionType,
			TimeLimit:    sec.TimeLimit,
			OrderIndex:   sec.OrderIndex,
			Instructions: sec.Instructions,
			Completed:    ls.Session.IsCompleted(sec.ID),
		})
	}
	return view
}

func (s *ExamSessionService) buildPaper(ls *liveSession, section *model.Section, timer exam.SectionTimer) (*SectionPaper, error) {
	parts, err := s.TestRepo.ListParts(section.ID)
	if err != nil {
		return nil, err
	}
	questions, err := s.QuestionRepo.ListBySection(section.ID)
	if err != nil {
		return nil, err
	}

	byPart := make(map[uint][]QuestionView)
	var loose []QuestionView
	for _, q := range questions {
		view := s.questionView(ls, &q)
		if q.PartID != nil {
			byPart[*q.PartID] = append(byPart[*q.PartID], view)
		} else {
			loose = append(loose, view)
		}
	}

	paper := &SectionPaper{
		Section: SectionView{
			ID:           section.ID,
			SectionType:  section.SectionType,
			TimeLimit:    section.TimeLimit,
			OrderIndex:   section.OrderIndex,
			Instructions: section.Instructions,
		},
		Questions:               loose,
		SectionRemainingSeconds: int64(timer.Remaining(s.Clock.Now()) / time.Second),
	}
	for _, p := range parts {
		paper.Parts = append(paper.Parts, PartView{
			ID:            p.ID,
			PartNumber:    p.PartNumber,
			Passage:       p.Passage,
			AudioURL:      p.AudioURL,
			PdfURL:        p.PdfURL,
			AudioDuration: p.AudioDuration,
			Questions:     byPart[p.ID],
		})
	}
	return paper, nil
}

func (s *ExamSessionService) questionView(ls *liveSession, q *model.Question) QuestionView {
	answer, _ := ls.Session.Answers.Get(q.ID)
	return QuestionView{
		ID:           q.ID,
		QuestionType: q.QuestionType,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Points:       q.Points,
		OrderIndex:   q.OrderIndex,
		Blanks:       exam.BlankCount(q.QuestionText),
		Answer:       answer,
	}
}

func sectionLimits(test *model.Test) []int {
	limits := make([]int, 0, len(test.Sections))
	for _, sec := range test.Sections {
		limits = append(limits, sec.TimeLimit)
	}
	return limits
}

func findSection(test *model.Test, sectionID uint) *model.Section {
	for i := range test.Sections {
		if test.Sections[i].ID == sectionID {
			return &test.Sections[i]
		}
	}
	return nil
}
