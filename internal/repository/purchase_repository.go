package repository

import (
	"time"

	"ielts_prep_backend/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) Create(p *model.Purchase) error {
	return r.DB.Create(p).Error
}

func (r *PurchaseRepository) Update(p *model.Purchase) error {
	return r.DB.Save(p).Error
}

// HasCompletedUnexpired reports whether the user holds a completed purchase
// for the test that has not expired. This is the only purchase read the
// access gate needs.
func (r *PurchaseRepository) HasCompletedUnexpired(userID, testID uint, now time.Time) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Purchase{}).
		Where("user_id = ? AND test_id = ? AND status = ?", userID, testID, model.PurchaseCompleted).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Count(&count).Error
	return count > 0, err
}

func (r *PurchaseRepository) ListByUser(userID uint) ([]model.Purchase, error) {
	var ps []model.Purchase
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&ps).Error
	return ps, err
}
