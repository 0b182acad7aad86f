package service

import (
	"ielts_prep_backend/internal/exam"
	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/repository"
	"ielts_prep_backend/internal/util"

	"gorm.io/gorm"
)

// TestService covers the catalogue reads students see and the authoring
// writes behind the admin routes.
type TestService struct {
	TestRepo     *repository.TestRepository
	QuestionRepo *repository.QuestionRepository
	Access       *AccessService
}

func NewTestService(testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository, access *AccessService) *TestService {
	return &TestService{
		TestRepo:     testRepo,
		QuestionRepo: questionRepo,
		Access:       access,
	}
}

func (s *TestService) ListTests(page, limit int, kind string, includeUnpublished bool) ([]model.Test, int64, error) {
	return s.TestRepo.List(page, limit, kind, !includeUnpublished)
}

func (s *TestService) GetTest(id uint, includeUnpublished bool) (*model.Test, error) {
	test, err := s.TestRepo.FindByIDWithSections(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if !test.IsPublished && !includeUnpublished {
		return nil, util.ErrTestNotFound
	}
	return test, nil
}

// TestOverview is the pre-entry detail screen: the test, its sections, and
// the caller's gate verdict. A not_yet_scheduled verdict carries the
// countdown the client renders live.
type TestOverview struct {
	Test     *model.Test         `json:"test"`
	Access   exam.AccessDecision `json:"access"`
	TotalMin int                 `json:"totalMinutes"`
}

func (s *TestService) GetOverview(userID, testID uint) (*TestOverview, error) {
	test, err := s.GetTest(testID, false)
	if err != nil {
		return nil, err
	}
	decision, err := s.Access.Check(userID, test)
	if err != nil {
		return nil, err
	}
	return &TestOverview{
		Test:     test,
		Access:   decision,
		TotalMin: test.TotalMinutes(),
	}, nil
}

// Authoring writes. Route-level role checks keep these admin-only.

func (s *TestService) CreateTest(t *model.Test) error {
	return s.TestRepo.Create(t)
}

func (s *TestService) UpdateTest(t *model.Test) error {
	return s.TestRepo.Update(t)
}

func (s *TestService) DeleteTest(id uint) error {
	return s.TestRepo.Delete(id)
}

func (s *TestService) CreateSection(sec *model.Section) error {
	if _, err := s.TestRepo.FindByID(sec.TestID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrTestNotFound
		}
		return err
	}
	return s.TestRepo.CreateSection(sec)
}

func (s *TestService) UpdateSection(sec *model.Section) error {
	return s.TestRepo.UpdateSection(sec)
}

func (s *TestService) DeleteSection(id uint) error {
	return s.TestRepo.DeleteSection(id)
}

func (s *TestService) GetSection(id uint) (*model.Section, error) {
	sec, err := s.TestRepo.FindSectionByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}
	return sec, nil
}

func (s *TestService) CreatePart(p *model.Part) error {
	if _, err := s.GetSection(p.SectionID); err != nil {
		return err
	}
	return s.TestRepo.CreatePart(p)
}

func (s *TestService) UpdatePart(p *model.Part) error {
	return s.TestRepo.UpdatePart(p)
}

func (s *TestService) DeletePart(id uint) error {
	return s.TestRepo.DeletePart(id)
}

func (s *TestService) GetPart(id uint) (*model.Part, error) {
	return s.TestRepo.FindPartByID(id)
}

// AttachPartAudio records an uploaded audio file and its probed duration on
// a listening part.
func (s *TestService) AttachPartAudio(partID uint, url string, durationSeconds int) (*model.Part, error) {
	part, err := s.TestRepo.FindPartByID(partID)
	if err != nil {
		return nil, err
	}
	part.AudioURL = url
	part.AudioDuration = durationSeconds
	if err := s.TestRepo.UpdatePart(part); err != nil {
		return nil, err
	}
	return part, nil
}

// AttachPartPdf records an uploaded PDF on a part.
func (s *TestService) AttachPartPdf(partID uint, url string) (*model.Part, error) {
	part, err := s.TestRepo.FindPartByID(partID)
	if err != nil {
		return nil, err
	}
	part.PdfURL = url
	if err := s.TestRepo.UpdatePart(part); err != nil {
		return nil, err
	}
	return part, nil
}

func (s *TestService) CreateQuestion(q *model.Question) error {
	if _, err := s.GetSection(q.SectionID); err != nil {
		return err
	}
	return s.QuestionRepo.Create(q)
}

func (s *TestService) UpdateQuestion(q *model.Question) error {
	return s.QuestionRepo.Update(q)
}

func (s *TestService) DeleteQuestion(id uint) error {
	return s.QuestionRepo.Delete(id)
}

func (s *TestService) GetQuestion(id uint) (*model.Question, error) {
	return s.QuestionRepo.FindByID(id)
}

// ListSectionQuestions returns a section's questions in display order, as
// stored. Admin-only: question rows carry the answer key.
func (s *TestService) ListSectionQuestions(sectionID uint) ([]model.Question, error) {
	if _, err := s.GetSection(sectionID); err != nil {
		return nil, err
	}
	return s.QuestionRepo.ListBySection(sectionID)
}
