package exam

import "testing"

func TestScoreGapFillPartialCredit(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		key        string
		answer     string
		points     float64
		earned     float64
		fullCredit bool
	}{
		{
			name:   "three of four blanks",
			text:   "Built in [[1]] [[2]] of [[3]] as a [[4]].",
			key:    "paris,1889,steel,tower",
			answer: "paris,1889,wood,tower",
			points: 4, earned: 3,
		},
		{
			name:   "case and whitespace insensitive",
			text:   "Built in [[1]] [[2]] of [[3]] as a [[4]].",
			key:    "paris,1889,steel,tower",
			answer: " Paris ,1889, STEEL ,tower",
			points: 4, earned: 4, fullCredit: true,
		},
		{
			name:   "single blank answered only",
			text:   "The capital is [[1]] and it was founded in [[2]].",
			key:    "paris, 1889",
			answer: "Paris,",
			points: 1, earned: 0.5,
		},
		{
			name:   "all blanks empty",
			text:   "The capital is [[1]] and it was founded in [[2]].",
			key:    "paris, 1889",
			answer: "",
			points: 2, earned: 0,
		},
		{
			name:   "key shorter than blank count scores missing position wrong",
			text:   "a [[1]] b [[2]] c [[3]]",
			key:    "one,two",
			answer: "one,two,three",
			points: 3, earned: 2,
		},
		{
			name:   "appearance order maps answers to key segments",
			text:   "First comes [[2]], then [[1]].",
			key:    "alpha,beta",
			answer: "alpha,beta",
			points: 2, earned: 2, fullCredit: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(KeyedQuestion{
				ID:            1,
				QuestionType:  TypeGapFill,
				QuestionText:  tc.text,
				CorrectAnswer: tc.key,
				Points:        tc.points,
			}, tc.answer)
			if got.Earned != tc.earned {
				t.Fatalf("expected earned=%v, got=%v", tc.earned, got.Earned)
			}
			if got.FullCredit != tc.fullCredit {
				t.Fatalf("expected fullCredit=%v, got=%v", tc.fullCredit, got.FullCredit)
			}
			if got.Max != tc.points {
				t.Fatalf("expected max=%v, got=%v", tc.points, got.Max)
			}
		})
	}
}

func TestScoreSingleValue(t *testing.T) {
	mc := KeyedQuestion{
		ID:            2,
		QuestionType:  TypeMultipleChoice,
		QuestionText:  "Pick one.",
		CorrectAnswer: "B",
		Points:        1,
	}

	tests := []struct {
		name   string
		answer string
		earned float64
	}{
		{name: "exact", answer: "B", earned: 1},
		{name: "lowercased trimmed", answer: " b ", earned: 1},
		{name: "only first segment compared", answer: "B,A", earned: 1},
		{name: "wrong first segment", answer: "A,B", earned: 0},
		{name: "wrong", answer: "C", earned: 0},
		{name: "empty", answer: "", earned: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(mc, tc.answer)
			if got.Earned != tc.earned {
				t.Fatalf("expected earned=%v, got=%v", tc.earned, got.Earned)
			}
		})
	}
}

func TestScoreSingleValueAlternatives(t *testing.T) {
	// a comma-separated key on a blank-less question is a set of accepted
	// answers, not positions
	q := KeyedQuestion{
		QuestionType:  TypeShortAnswer,
		QuestionText:  "Name the material used.",
		CorrectAnswer: "steel, iron",
		Points:        1,
	}
	if got := Score(q, "Iron"); got.Earned != 1 {
		t.Fatalf("expected alternative to score full, got %v", got.Earned)
	}
	if got := Score(q, "wood"); got.Earned != 0 {
		t.Fatalf("expected miss to score zero, got %v", got.Earned)
	}
}

func TestScoreMultiSelectExact(t *testing.T) {
	q := KeyedQuestion{
		QuestionType:  TypeMultipleChoiceMulti,
		QuestionText:  "Pick two.",
		CorrectAnswer: "A,C",
		Points:        2,
	}

	tests := []struct {
		name   string
		answer string
		earned float64
	}{
		{name: "exact set", answer: "A,C", earned: 2},
		{name: "order insensitive", answer: "c,a", earned: 2},
		{name: "missing letter", answer: "A", earned: 0},
		{name: "extra letter", answer: "A,B,C", earned: 0},
		{name: "empty", answer: "", earned: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(q, tc.answer)
			if got.Earned != tc.earned {
				t.Fatalf("expected earned=%v, got=%v", tc.earned, got.Earned)
			}
		})
	}
}

func TestScoreDefaultsZeroPointsToOne(t *testing.T) {
	got := Score(KeyedQuestion{
		QuestionType:  TypeTrueFalseNG,
		CorrectAnswer: "true",
	}, "TRUE")
	if got.Earned != 1 || got.Max != 1 {
		t.Fatalf("expected 1/1, got %v/%v", got.Earned, got.Max)
	}
}

func TestScoreAllAndBand(t *testing.T) {
	questions := []KeyedQuestion{
		{ID: 1, QuestionType: TypeMultipleChoice, CorrectAnswer: "B", Points: 1},
		{ID: 2, QuestionType: TypeGapFill, QuestionText: "[[1]] and [[2]]", CorrectAnswer: "paris,1889", Points: 2},
		{ID: 3, QuestionType: TypeTrueFalseNG, CorrectAnswer: "not given", Points: 1},
	}
	answers := map[uint]string{
		1: "b",
		2: "Paris,", // half credit only, not a full-credit question
		3: "false",
	}

	scores, sum := ScoreAll(questions, answers)
	if len(scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(scores))
	}
	if sum.Earned != 2 { // 1 + 1 + 0
		t.Fatalf("expected earned=2, got %v", sum.Earned)
	}
	if sum.CorrectCount != 1 {
		t.Fatalf("partial credit must not count as correct: got %d", sum.CorrectCount)
	}
	if sum.Band != Band(1, 3) {
		t.Fatalf("summary band mismatch: %v", sum.Band)
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 40, 0},
		{40, 40, 9},
		{20, 40, 4.5},
		{13, 40, 3},   // 2.925 rounds up to the half band
		{27, 40, 6},   // 6.075 rounds down
		{1, 3, 3},
		{0, 0, 0},
	}
	for _, tc := range tests {
		if got := Band(tc.correct, tc.total); got != tc.want {
			t.Fatalf("Band(%d,%d): expected %v, got %v", tc.correct, tc.total, got, tc.want)
		}
	}
}
