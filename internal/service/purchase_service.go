package service

import (
	"time"

	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/repository"
	"ielts_prep_backend/internal/util"

	"gorm.io/gorm"
)

// PurchaseService handles access grants. Payment processing lives outside
// this service: an admin (or an upstream payment hook) records a completed
// purchase and the access gate picks it up.
type PurchaseService struct {
	PurchaseRepo *repository.PurchaseRepository
	TestRepo     *repository.TestRepository
	UserRepo     *repository.UserRepository
}

func NewPurchaseService(purchaseRepo *repository.PurchaseRepository, testRepo *repository.TestRepository, userRepo *repository.UserRepository) *PurchaseService {
	return &PurchaseService{
		PurchaseRepo: purchaseRepo,
		TestRepo:     testRepo,
		UserRepo:     userRepo,
	}
}

// Grant records completed paid access for a user to a test. A nil expiresAt
// means the access never lapses.
func (s *PurchaseService) Grant(userID, testID uint, reference string, expiresAt *time.Time) (*model.Purchase, error) {
	if _, err := s.UserRepo.FindByID(userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	test, err := s.TestRepo.FindByID(testID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	purchase := &model.Purchase{
		UserID:    userID,
		TestID:    testID,
		Amount:    test.Price,
		Status:    model.PurchaseCompleted,
		Reference: reference,
		ExpiresAt: expiresAt,
	}
	if err := s.PurchaseRepo.Create(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *PurchaseService) ListByUser(userID uint) ([]model.Purchase, error) {
	return s.PurchaseRepo.ListByUser(userID)
}
