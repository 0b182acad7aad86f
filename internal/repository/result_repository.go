package repository

import (
	"ielts_prep_backend/internal/model"

	"gorm.io/gorm"
)

type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) Create(res *model.Result) error {
	return r.DB.Create(res).Error
}

func (r *ResultRepository) FindByID(id string) (*model.Result, error) {
	var res model.Result
	err := r.DB.Preload("Test").First(&res, "id = ?", id).Error
	return &res, err
}

// FindByUserAndTest returns the most recent result of a user for a test.
// Its presence is what makes a paid mock test single-attempt.
func (r *ResultRepository) FindByUserAndTest(userID, testID uint) (*model.Result, error) {
	var res model.Result
	err := r.DB.Where("user_id = ? AND test_id = ?", userID, testID).
		Order("created_at desc").First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResultRepository) ExistsForUserAndTest(userID, testID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Result{}).
		Where("user_id = ? AND test_id = ?", userID, testID).Count(&count).Error
	return count > 0, err
}

func (r *ResultRepository) ListByUser(userID uint, page, limit int) ([]model.Result, int64, error) {
	var rs []model.Result
	var total int64
	query := r.DB.Model(&model.Result{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Test").Order("created_at desc").Offset(offset).Limit(limit).Find(&rs).Error
	return rs, total, err
}
