package exam

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	soon := now.Add(2 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name      string
		in        AccessInput
		allowed   bool
		reason    AccessReason
		waitAbove int64
	}{
		{
			name:   "anonymous user",
			in:     AccessInput{TestKind: KindPractice, IsFree: true, Now: now},
			reason: ReasonNotAuthenticated,
		},
		{
			name:    "free practice test always allowed",
			in:      AccessInput{Authenticated: true, TestKind: KindPractice, IsFree: true, Now: now},
			allowed: true,
		},
		{
			name:   "paid test without purchase",
			in:     AccessInput{Authenticated: true, TestKind: KindMock, Now: now},
			reason: ReasonNoAccess,
		},
		{
			name: "paid mock with prior result denied despite valid purchase",
			in: AccessInput{
				Authenticated: true, TestKind: KindMock,
				HasPurchase: true, HasResult: true, Now: now,
			},
			reason: ReasonAlreadyTaken,
		},
		{
			name: "free mock with prior result allowed",
			in: AccessInput{
				Authenticated: true, TestKind: KindMock, IsFree: true,
				HasResult: true, Now: now,
			},
			allowed: true,
		},
		{
			name: "paid practice with prior result allowed",
			in: AccessInput{
				Authenticated: true, TestKind: KindPractice,
				HasPurchase: true, HasResult: true, Now: now,
			},
			allowed: true,
		},
		{
			name: "scheduled mock before its instant",
			in: AccessInput{
				Authenticated: true, TestKind: KindMock, IsFree: true,
				ScheduledAt: &soon, Now: now,
			},
			reason:    ReasonNotYetScheduled,
			waitAbove: 7199,
		},
		{
			name: "scheduled mock after its instant",
			in: AccessInput{
				Authenticated: true, TestKind: KindMock, IsFree: true,
				ScheduledAt: &past, Now: now,
			},
			allowed: true,
		},
		{
			name: "schedule does not gate practice tests",
			in: AccessInput{
				Authenticated: true, TestKind: KindPractice, IsFree: true,
				ScheduledAt: &soon, Now: now,
			},
			allowed: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.in)
			if got.Allowed != tc.allowed {
				t.Fatalf("expected allowed=%v, got=%v (reason=%s)", tc.allowed, got.Allowed, got.Reason)
			}
			if !tc.allowed && got.Reason != tc.reason {
				t.Fatalf("expected reason=%s, got=%s", tc.reason, got.Reason)
			}
			if tc.waitAbove > 0 && got.WaitSeconds < tc.waitAbove {
				t.Fatalf("expected waitSeconds >= %d, got %d", tc.waitAbove, got.WaitSeconds)
			}
		})
	}
}
