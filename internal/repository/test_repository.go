package repository

import (
	"ielts_prep_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(t *model.Test) error {
	return r.DB.Create(t).Error
}

func (r *TestRepository) Update(t *model.Test) error {
	return r.DB.Save(t).Error
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Test{}, id).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.First(&t, id).Error
	return &t, err
}

// FindByIDWithSections loads the test with its sections in display order.
func (r *TestRepository) FindByIDWithSections(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.Preload("Sections", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc")
	}).First(&t, id).Error
	return &t, err
}

func (r *TestRepository) List(page, limit int, kind string, publishedOnly bool) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64
	query := r.DB.Model(&model.Test{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&tests).Error
	return tests, total, err
}

// Section methods

func (r *TestRepository) CreateSection(s *model.Section) error {
	return r.DB.Create(s).Error
}

func (r *TestRepository) UpdateSection(s *model.Section) error {
	return r.DB.Save(s).Error
}

func (r *TestRepository) DeleteSection(id uint) error {
	return r.DB.Delete(&model.Section{}, id).Error
}

func (r *TestRepository) FindSectionByID(id uint) (*model.Section, error) {
	var s model.Section
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *TestRepository) ListSections(testID uint) ([]model.Section, error) {
	var ss []model.Section
	err := r.DB.Where("test_id = ?", testID).Order("order_index asc").Find(&ss).Error
	return ss, err
}

// Part methods

func (r *TestRepository) CreatePart(p *model.Part) error {
	return r.DB.Create(p).Error
}

func (r *TestRepository) UpdatePart(p *model.Part) error {
	return r.DB.Save(p).Error
}

func (r *TestRepository) DeletePart(id uint) error {
	return r.DB.Delete(&model.Part{}, id).Error
}

func (r *TestRepository) FindPartByID(id uint) (*model.Part, error) {
	var p model.Part
	err := r.DB.First(&p, id).Error
	return &p, err
}

func (r *TestRepository) ListParts(sectionID uint) ([]model.Part, error) {
	var ps []model.Part
	err := r.DB.Where("section_id = ?", sectionID).Order("part_number asc").Find(&ps).Error
	return ps, err
}
