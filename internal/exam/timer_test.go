package exam

import (
	"testing"
	"time"
)

func TestSectionTimer(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	timer := StartSectionTimer(start, 60)

	if got := timer.Remaining(start); got != time.Hour {
		t.Fatalf("expected full hour remaining, got %v", got)
	}
	if timer.Expired(start.Add(59 * time.Minute)) {
		t.Fatal("timer must not expire before the limit")
	}
	if !timer.Expired(start.Add(time.Hour)) {
		t.Fatal("timer must expire exactly at the limit")
	}
	if got := timer.Remaining(start.Add(2 * time.Hour)); got != 0 {
		t.Fatalf("remaining must clamp at zero, got %v", got)
	}
}

func TestGlobalTimerRemaining(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	timer := NewGlobalTimer([]int{30, 60, 60, 15}) // 165 minutes
	budget := 165 * time.Minute

	tests := []struct {
		name  string
		now   time.Time
		want  time.Duration
		fresh bool
	}{
		{name: "at anchor", now: anchor, want: budget, fresh: true},
		{name: "50s before expiry", now: anchor.Add(budget - 50*time.Second), want: 50 * time.Second, fresh: true},
		{name: "exactly expired resets", now: anchor.Add(budget), want: budget, fresh: false},
		{name: "100s past expiry resets", now: anchor.Add(budget + 100*time.Second), want: budget, fresh: false},
		{name: "impossibly old anchor resets", now: anchor.Add(400 * 24 * time.Hour), want: budget, fresh: false},
		{name: "anchor from the future resets", now: anchor.Add(-time.Minute), want: budget, fresh: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := timer.Remaining(anchor, tc.now)
			if ok != tc.fresh {
				t.Fatalf("expected ok=%v, got=%v", tc.fresh, ok)
			}
			if got != tc.want {
				t.Fatalf("expected remaining=%v, got=%v", tc.want, got)
			}
		})
	}
}

func TestGlobalTimerTickGranularity(t *testing.T) {
	anchor := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	timer := NewGlobalTimer([]int{1})

	// sub-second elapsed time must not eat a whole displayed second
	got, ok := timer.Remaining(anchor, anchor.Add(900*time.Millisecond))
	if !ok {
		t.Fatal("expected a fresh anchor")
	}
	if got != time.Minute {
		t.Fatalf("expected %v, got %v", time.Minute, got)
	}
}
