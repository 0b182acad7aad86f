package repository

import (
	"ielts_prep_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) ListBySection(sectionID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("section_id = ?", sectionID).Order("order_index asc, created_at asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) ListByPart(partID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Where("part_id = ?", partID).Order("order_index asc, created_at asc").Find(&qs).Error
	return qs, err
}

// ListByTest loads the whole question bank of a test, section by section in
// order. Used by the lazy scoring pass.
func (r *QuestionRepository) ListByTest(testID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.
		Joins("JOIN sections ON sections.id = questions.section_id").
		Where("sections.test_id = ?", testID).
		Order("sections.order_index asc, questions.order_index asc, questions.created_at asc").
		Find(&qs).Error
	return qs, err
}
