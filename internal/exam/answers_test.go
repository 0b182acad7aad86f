package exam

import (
	"strings"
	"testing"
)

func TestAnswerSheetPositionalRoundTrip(t *testing.T) {
	// Writing every blank position and reading the value back must
	// reproduce the exact strings in the same order.
	tests := []struct {
		name   string
		values []string
	}{
		{name: "two blanks", values: []string{"paris", "1889"}},
		{name: "four blanks", values: []string{"a", "b", "c", "d"}},
		{name: "single blank", values: []string{"steel"}},
		{name: "values with spaces", values: []string{" Paris ", "the tower"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sheet := NewAnswerSheet()
			for i, v := range tc.values {
				sheet.Set(7, i, len(tc.values), v)
			}
			got, ok := sheet.Get(7)
			if !ok {
				t.Fatal("expected a stored value")
			}
			parts := strings.Split(got, ",")
			if len(parts) != len(tc.values) {
				t.Fatalf("expected %d segments, got %d (%q)", len(tc.values), len(parts), got)
			}
			for i, want := range tc.values {
				if parts[i] != want {
					t.Fatalf("segment %d: expected %q, got %q", i, want, parts[i])
				}
			}
		})
	}
}

func TestAnswerSheetPadsMissingPositions(t *testing.T) {
	sheet := NewAnswerSheet()
	sheet.Set(3, 2, 3, "third")
	got, _ := sheet.Get(3)
	if got != ",,third" {
		t.Fatalf("expected %q, got %q", ",,third", got)
	}

	// filling an earlier position keeps the later one intact
	sheet.Set(3, 0, 3, "first")
	got, _ = sheet.Get(3)
	if got != "first,,third" {
		t.Fatalf("expected %q, got %q", "first,,third", got)
	}
}

func TestAnswerSheetWholeValueReplace(t *testing.T) {
	sheet := NewAnswerSheet()
	sheet.Set(9, 1, 2, "b")
	sheet.Set(9, WholeValue, 0, "A,C")
	got, _ := sheet.Get(9)
	if got != "A,C" {
		t.Fatalf("expected whole-value replace, got %q", got)
	}
}

func TestAnswerSheetAnswered(t *testing.T) {
	sheet := NewAnswerSheet()
	if sheet.Answered(1) {
		t.Fatal("unseen question must not count as answered")
	}
	sheet.Set(1, 1, 2, "")
	if sheet.Answered(1) {
		t.Fatal("empty slots must not count as answered")
	}
	sheet.Set(1, 1, 2, "x")
	if !sheet.Answered(1) {
		t.Fatal("non-empty slot must count as answered")
	}
}

func TestAnswerSheetSnapshotIsCopy(t *testing.T) {
	sheet := NewAnswerSheet()
	sheet.Set(1, WholeValue, 0, "a")
	snap := sheet.Snapshot()
	snap[1] = "mutated"
	if got, _ := sheet.Get(1); got != "a" {
		t.Fatalf("snapshot mutation leaked into the sheet: %q", got)
	}
}
