package service

import (
	"encoding/json"
	"strconv"

	"ielts_prep_backend/internal/exam"
	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/repository"
	"ielts_prep_backend/internal/util"

	"gorm.io/gorm"
)

// ScoringService grades results on display. A result row stores only the raw
// answer snapshot; the key, explanations and band are applied lazily here,
// so re-keying a question retroactively fixes every past result.
type ScoringService struct {
	ResultRepo   *repository.ResultRepository
	QuestionRepo *repository.QuestionRepository
}

func NewScoringService(resultRepo *repository.ResultRepository, questionRepo *repository.QuestionRepository) *ScoringService {
	return &ScoringService{
		ResultRepo:   resultRepo,
		QuestionRepo: questionRepo,
	}
}

// QuestionReview is one graded question with the key revealed.
type QuestionReview struct {
	QuestionID    uint    `json:"questionId"`
	QuestionType  string  `json:"questionType"`
	QuestionText  string  `json:"questionText"`
	GivenAnswer   string  `json:"givenAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	Explanation   string  `json:"explanation,omitempty"`
	Earned        float64 `json:"earned"`
	Max           float64 `json:"max"`
	CorrectBlanks int     `json:"correctBlanks,omitempty"`
	TotalBlanks   int     `json:"totalBlanks,omitempty"`
	FullCredit    bool    `json:"fullCredit"`
	Answered      bool    `json:"answered"`
}

// ResultView is the full review screen for one result.
type ResultView struct {
	Result  *model.Result    `json:"result"`
	Review  []QuestionReview `json:"review"`
	Summary exam.Summary     `json:"summary"`
}

// GetResultView loads and grades a result. Non-admin callers only see their
// own results.
func (s *ScoringService) GetResultView(resultID string, requesterID uint, isAdmin bool) (*ResultView, error) {
	result, err := s.ResultRepo.FindByID(resultID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if !isAdmin && result.UserID != requesterID {
		return nil, util.ErrPermissionDenied
	}

	answers, err := decodeAnswers(result.Answers)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByTest(result.TestID)
	if err != nil {
		return nil, err
	}

	keyed := make([]exam.KeyedQuestion, len(questions))
	for i, q := range questions {
		keyed[i] = exam.KeyedQuestion{
			ID:            q.ID,
			QuestionType:  q.QuestionType,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		}
	}

	scores, summary := exam.ScoreAll(keyed, answers)

	review := make([]QuestionReview, len(questions))
	for i, q := range questions {
		sc := scores[i]
		review[i] = QuestionReview{
			QuestionID:    q.ID,
			QuestionType:  q.QuestionType,
			QuestionText:  q.QuestionText,
			GivenAnswer:   answers[q.ID],
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Earned:        sc.Earned,
			Max:           sc.Max,
			CorrectBlanks: sc.CorrectBlanks,
			TotalBlanks:   sc.TotalBlanks,
			FullCredit:    sc.FullCredit,
			Answered:      sc.Answered,
		}
	}

	return &ResultView{
		Result:  result,
		Review:  review,
		Summary: summary,
	}, nil
}

// ResultSummary is one row of the user's result history: the stored facts
// plus the lazily computed summary, without the per-question review.
type ResultSummary struct {
	Result  *model.Result `json:"result"`
	Summary exam.Summary  `json:"summary"`
}

// ListUserResults pages through a user's results, grading each one.
func (s *ScoringService) ListUserResults(userID uint, page, limit int) ([]ResultSummary, int64, error) {
	results, total, err := s.ResultRepo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ResultSummary, 0, len(results))
	for i := range results {
		r := &results[i]
		summary, err := s.summarize(r)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ResultSummary{Result: r, Summary: summary})
	}
	return out, total, nil
}

func (s *ScoringService) summarize(r *model.Result) (exam.Summary, error) {
	answers, err := decodeAnswers(r.Answers)
	if err != nil {
		return exam.Summary{}, err
	}
	questions, err := s.QuestionRepo.ListByTest(r.TestID)
	if err != nil {
		return exam.Summary{}, err
	}
	keyed := make([]exam.KeyedQuestion, len(questions))
	for i, q := range questions {
		keyed[i] = exam.KeyedQuestion{
			ID:            q.ID,
			QuestionType:  q.QuestionType,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		}
	}
	_, summary := exam.ScoreAll(keyed, answers)
	return summary, nil
}

// decodeAnswers unmarshals the stored questionID -> value snapshot. JSON
// object keys are strings, so the ids come back through strconv.
func decodeAnswers(raw json.RawMessage) (map[uint]string, error) {
	if len(raw) == 0 {
		return map[uint]string{}, nil
	}
	var byKey map[string]string
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, err
	}
	out := make(map[uint]string, len(byKey))
	for k, v := range byKey {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			continue
		}
		out[uint(id)] = v
	}
	return out, nil
}
