package exam

import "time"

// SectionTimer is the countdown for one active section. It is never
// persisted: leaving the section discards it, and re-entering a section
// restarts from the full time limit.
type SectionTimer struct {
	StartedAt time.Time
	Deadline  time.Time
}

// StartSectionTimer begins a countdown of limitMinutes from now.
func StartSectionTimer(now time.Time, limitMinutes int) SectionTimer {
	return SectionTimer{
		StartedAt: now,
		Deadline:  now.Add(time.Duration(limitMinutes) * time.Minute),
	}
}

// Remaining returns the time left, never negative.
func (t SectionTimer) Remaining(now time.Time) time.Duration {
	if d := t.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Expired reports whether the section budget has run out.
func (t SectionTimer) Expired(now time.Time) bool {
	return !now.Before(t.Deadline)
}

// GlobalTimer is the test-wide countdown of a mock test. Its only durable
// state is the anchor instant recorded when the first section is entered;
// remaining time is always recomputed from budget minus elapsed, so the
// countdown survives reloads.
type GlobalTimer struct {
	Budget time.Duration // sum of all section time limits
}

// NewGlobalTimer builds the timer from the test's section limits in minutes.
func NewGlobalTimer(sectionLimits []int) GlobalTimer {
	total := 0
	for _, m := range sectionLimits {
		total += m
	}
	return GlobalTimer{Budget: time.Duration(total) * time.Minute}
}

// Remaining computes the time left since anchor. ok=false marks a stale
// anchor (budget fully elapsed, or an anchor impossibly far in the past):
// the caller must record a fresh anchor and restart from the full budget
// rather than surfacing negative time. This is deliberate tolerant recovery,
// not a hard expiry.
func (g GlobalTimer) Remaining(anchor, now time.Time) (time.Duration, bool) {
	elapsed := now.Sub(anchor)
	if elapsed < 0 {
		// corrupted anchor from the future, treat as stale too
		return g.Budget, false
	}
	remaining := g.Budget - elapsed.Truncate(time.Second)
	if remaining <= 0 {
		return g.Budget, false
	}
	return remaining, true
}
