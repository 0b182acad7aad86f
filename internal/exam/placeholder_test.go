package exam

import "testing"

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantTokens  []string
		wantNumbers []int
	}{
		{
			name:        "two blanks in order",
			text:        "The capital is [[1]] and it was founded in [[2]].",
			wantTokens:  []string{"[[1]]", "[[2]]"},
			wantNumbers: []int{1, 2},
		},
		{
			name:        "appearance order wins over numeric order",
			text:        "First comes [[2]], then [[1]].",
			wantTokens:  []string{"[[2]]", "[[1]]"},
			wantNumbers: []int{2, 1},
		},
		{
			name:        "repeated token deduplicated",
			text:        "[[1]] and again [[1]] and [[3]]",
			wantTokens:  []string{"[[1]]", "[[3]]"},
			wantNumbers: []int{1, 3},
		},
		{
			name:        "non-contiguous numbering",
			text:        "a [[5]] b [[9]] c",
			wantTokens:  []string{"[[5]]", "[[9]]"},
			wantNumbers: []int{5, 9},
		},
		{
			name: "no placeholders",
			text: "Choose the correct option below.",
		},
		{
			name: "malformed brackets ignored",
			text: "a [1] b [[x]] c [[12] d",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Placeholders(tc.text)
			if len(got) != len(tc.wantTokens) {
				t.Fatalf("expected %d placeholders, got %d", len(tc.wantTokens), len(got))
			}
			for i, p := range got {
				if p.Token != tc.wantTokens[i] {
					t.Fatalf("placeholder %d: expected token %q, got %q", i, tc.wantTokens[i], p.Token)
				}
				if p.Number != tc.wantNumbers[i] {
					t.Fatalf("placeholder %d: expected number %d, got %d", i, tc.wantNumbers[i], p.Number)
				}
				if p.Position != i {
					t.Fatalf("placeholder %d: expected position %d, got %d", i, i, p.Position)
				}
			}
		})
	}
}

func TestBlankCount(t *testing.T) {
	if n := BlankCount("x [[1]] y [[2]] z [[2]]"); n != 2 {
		t.Fatalf("expected 2 blanks, got %d", n)
	}
	if n := BlankCount("no blanks here"); n != 0 {
		t.Fatalf("expected 0 blanks, got %d", n)
	}
}
