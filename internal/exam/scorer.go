package exam

import (
	"math"
	"sort"
	"strings"
)

// Question type tags as stored on question records. The enum is open on the
// wire; the scorer only dispatches on the shape each tag implies.
const (
	TypeMultipleChoice      = "multiple_choice"
	TypeGapFill             = "gap_fill"
	TypeTrueFalseNG         = "true_false_ng"
	TypeYesNoNG             = "yes_no_ng"
	TypeMatching            = "matching"
	TypeParagraphMatching   = "paragraph_matching"
	TypeMultipleChoiceMulti = "multiple_choice_multi"
	TypeShortAnswer         = "short_answer"
	TypeSummaryCompletion   = "summary_completion"
	TypeFlowChart           = "flow_chart"
)

// AnswerShape is the closed set of answer encodings a question can use.
type AnswerShape int

const (
	ShapeSingle    AnswerShape = iota // one value, first comma segment compared
	ShapeBlanks                       // positional comma-encoded blanks, partial credit
	ShapeLetterSet                    // comma-joined letter set, exact match
)

// ShapeOf derives the answer shape from the question type and its blank
// count. gap_fill always scores positionally; any other type does so only
// when the text carries more than one placeholder.
func ShapeOf(questionType string, blanks int) AnswerShape {
	switch {
	case questionType == TypeMultipleChoiceMulti:
		return ShapeLetterSet
	case questionType == TypeGapFill && blanks > 0:
		return ShapeBlanks
	case blanks > 1:
		return ShapeBlanks
	default:
		return ShapeSingle
	}
}

// KeyedQuestion is the minimal view of a question the scorer needs.
type KeyedQuestion struct {
	ID            uint
	QuestionType  string
	QuestionText  string
	CorrectAnswer string // comma-separated; positional for blank questions
	Points        float64
}

// QuestionScore is the graded outcome for one question.
type QuestionScore struct {
	QuestionID    uint    `json:"questionId"`
	Earned        float64 `json:"earned"`
	Max           float64 `json:"max"`
	CorrectBlanks int     `json:"correctBlanks"`
	TotalBlanks   int     `json:"totalBlanks"`
	FullCredit    bool    `json:"fullCredit"`
	Answered      bool    `json:"answered"`
}

// Summary aggregates a scoring pass. CorrectCount counts only full-credit
// questions and is what feeds the displayed count and the band estimate;
// partial blank credit contributes to Earned alone.
type Summary struct {
	Earned       float64 `json:"earned"`
	Max          float64 `json:"max"`
	CorrectCount int     `json:"correctCount"`
	Total        int     `json:"total"`
	Band         float64 `json:"band"`
}

func normalizeSegment(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitSegments(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = normalizeSegment(p)
	}
	return out
}

// letterSet canonicalizes a comma-joined letter set: trimmed, lowercased,
// empties dropped, sorted.
func letterSet(s string) string {
	parts := splitSegments(s)
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	sort.Strings(kept)
	return strings.Join(kept, ",")
}

// Score grades one question against its stored answer value. Missing key
// segments count as always-incorrect positions; a malformed key never
// panics the pass.
func Score(q KeyedQuestion, answer string) QuestionScore {
	points := q.Points
	if points <= 0 {
		points = 1
	}

	res := QuestionScore{
		QuestionID: q.ID,
		Max:        points,
		Answered:   hasValue(answer),
	}

	blanks := BlankCount(q.QuestionText)
	correct := splitSegments(q.CorrectAnswer)

	switch ShapeOf(q.QuestionType, blanks) {
	case ShapeLetterSet:
		want := letterSet(q.CorrectAnswer)
		if want != "" && letterSet(answer) == want {
			res.Earned = points
			res.FullCredit = true
		}

	case ShapeBlanks:
		numGaps := blanks
		if numGaps == 0 {
			numGaps = 1
		}
		res.TotalBlanks = numGaps
		given := splitSegments(answer)
		hits := 0
		for i := 0; i < numGaps; i++ {
			if i >= len(correct) || correct[i] == "" {
				continue // key shorter than the blank count: position stays wrong
			}
			if i < len(given) && given[i] == correct[i] {
				hits++
			}
		}
		res.CorrectBlanks = hits
		res.Earned = points * float64(hits) / float64(numGaps)
		res.FullCredit = hits == numGaps

	default:
		given := normalizeSegment(strings.Split(answer, ",")[0])
		if given != "" {
			for _, c := range correct {
				if c != "" && given == c {
					res.Earned = points
					res.FullCredit = true
					break
				}
			}
		}
	}

	return res
}

// ScoreAll grades a question bank against an answer snapshot.
func ScoreAll(questions []KeyedQuestion, answers map[uint]string) ([]QuestionScore, Summary) {
	scores := make([]QuestionScore, 0, len(questions))
	sum := Summary{Total: len(questions)}
	for _, q := range questions {
		sc := Score(q, answers[q.ID])
		scores = append(scores, sc)
		sum.Earned += sc.Earned
		sum.Max += sc.Max
		if sc.FullCredit {
			sum.CorrectCount++
		}
	}
	sum.Band = Band(sum.CorrectCount, sum.Total)
	return scores, sum
}

// Band maps a raw full-credit ratio onto the 0-9 half-band scale. This is a
// coarse linear estimate, not a calibrated IELTS banding table.
func Band(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	ratio := float64(correct) / float64(total)
	return math.Round(ratio*9*2) / 2
}

func hasValue(answer string) bool {
	for _, p := range strings.Split(answer, ",") {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
