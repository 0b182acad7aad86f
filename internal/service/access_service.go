package service

import (
	"ielts_prep_backend/internal/exam"
	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/repository"
	"ielts_prep_backend/internal/util"
)

// AccessService gathers the purchase and prior-result facts the entry gate
// needs and asks the engine for a verdict.
type AccessService struct {
	PurchaseRepo *repository.PurchaseRepository
	ResultRepo   *repository.ResultRepository
	Clock        exam.Clock
}

func NewAccessService(purchaseRepo *repository.PurchaseRepository, resultRepo *repository.ResultRepository, clock exam.Clock) *AccessService {
	if clock == nil {
		clock = exam.SystemClock()
	}
	return &AccessService{
		PurchaseRepo: purchaseRepo,
		ResultRepo:   resultRepo,
		Clock:        clock,
	}
}

// Check evaluates whether the user may enter the test right now. userID 0
// means unauthenticated.
func (s *AccessService) Check(userID uint, test *model.Test) (exam.AccessDecision, error) {
	now := s.Clock.Now()
	in := exam.AccessInput{
		Authenticated: userID != 0,
		TestKind:      string(test.Kind),
		IsFree:        test.IsFree,
		ScheduledAt:   test.ScheduledAt,
		Now:           now,
	}

	if in.Authenticated && !test.IsFree {
		hasPurchase, err := s.PurchaseRepo.HasCompletedUnexpired(userID, test.ID, now)
		if err != nil {
			return exam.AccessDecision{}, err
		}
		in.HasPurchase = hasPurchase

		if test.Kind == model.KindMock {
			hasResult, err := s.ResultRepo.ExistsForUserAndTest(userID, test.ID)
			if err != nil {
				return exam.AccessDecision{}, err
			}
			in.HasResult = hasResult
		}
	}

	return exam.Decide(in), nil
}

// DecisionError maps a denial to the service error the HTTP layer translates
// into a status code.
func DecisionError(d exam.AccessDecision) error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case exam.ReasonNotAuthenticated:
		return util.ErrPermissionDenied
	case exam.ReasonAlreadyTaken:
		return util.ErrAlreadyTaken
	case exam.ReasonNotYetScheduled:
		return util.ErrNotYetScheduled
	default:
		return util.ErrNoAccess
	}
}
