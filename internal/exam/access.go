package exam

import "time"

// Test kinds. Mock tests simulate the real exam under a global countdown and
// are single-attempt when paid; practice tests are unlimited.
const (
	KindMock     = "mock"
	KindPractice = "practice"
)

// AccessReason explains a denied entry.
type AccessReason string

const (
	ReasonNotAuthenticated AccessReason = "not_authenticated"
	ReasonNoAccess         AccessReason = "no_access"
	ReasonAlreadyTaken     AccessReason = "already_taken"
	ReasonNotYetScheduled  AccessReason = "not_yet_scheduled"
)

// AccessInput carries everything the entry decision needs; the caller
// gathers it from the record store.
type AccessInput struct {
	Authenticated bool
	TestKind      string
	IsFree        bool
	ScheduledAt   *time.Time
	HasPurchase   bool // completed and unexpired, for this user+test
	HasResult     bool // a prior final submission exists for this user+test
	Now           time.Time
}

// AccessDecision is the gate verdict. WaitSeconds is set with
// not_yet_scheduled so the caller can drive a live countdown.
type AccessDecision struct {
	Allowed     bool         `json:"allowed"`
	Reason      AccessReason `json:"reason,omitempty"`
	WaitSeconds int64        `json:"waitSeconds,omitempty"`
}

// Decide is the whole access gate. Paid mock tests are single-attempt: an
// existing result denies entry even while a valid purchase is held. Free
// tests and practice tests can always be retaken.
func Decide(in AccessInput) AccessDecision {
	if !in.Authenticated {
		return AccessDecision{Reason: ReasonNotAuthenticated}
	}
	if !in.IsFree && !in.HasPurchase {
		return AccessDecision{Reason: ReasonNoAccess}
	}
	if in.TestKind == KindMock && !in.IsFree && in.HasResult {
		return AccessDecision{Reason: ReasonAlreadyTaken}
	}
	if in.TestKind == KindMock && in.ScheduledAt != nil && in.Now.Before(*in.ScheduledAt) {
		return AccessDecision{
			Reason:      ReasonNotYetScheduled,
			WaitSeconds: int64(in.ScheduledAt.Sub(in.Now) / time.Second),
		}
	}
	return AccessDecision{Allowed: true}
}
