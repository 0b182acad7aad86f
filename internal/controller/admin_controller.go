package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/service"
	"ielts_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController is the authoring surface: tests, sections, parts,
// questions, asset uploads, and manual access grants. The router mounts it
// behind the admin role check.
type AdminController struct {
	TestService     *service.TestService
	StorageService  *service.StorageService
	PurchaseService *service.PurchaseService
}

func NewAdminController(testService *service.TestService, storageService *service.StorageService, purchaseService *service.PurchaseService) *AdminController {
	return &AdminController{
		TestService:     testService,
		StorageService:  storageService,
		PurchaseService: purchaseService,
	}
}

func adminError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTestNotFound), errors.Is(err, util.ErrSectionNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// swagger:model TestRequest
type TestRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Kind        string     `json:"kind" binding:"required,oneof=mock practice"`
	IsFree      bool       `json:"isFree"`
	Price       float64    `json:"price"`
	IsPublished bool       `json:"isPublished"`
	ScheduledAt *time.Time `json:"scheduledAt"`
}

// CreateTest godoc
// @Summary Create a test
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body TestRequest true "test"
// @Success 201 {object} util.Response{data=model.Test}
// @Router /api/admin/tests [post]
func (c *AdminController) CreateTest(ctx *gin.Context) {
	var req TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test := &model.Test{
		Title:       req.Title,
		Description: req.Description,
		Kind:        model.TestKind(req.Kind),
		IsFree:      req.IsFree,
		Price:       req.Price,
		IsPublished: req.IsPublished,
		ScheduledAt: req.ScheduledAt,
	}
	if err := c.TestService.CreateTest(test); err != nil {
		adminError(ctx, err)
		return
	}
	util.Created(ctx, test)
}

// UpdateTest godoc
// @Summary Update a test
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param body body TestRequest true "test"
// @Success 200 {object} util.Response{data=model.Test}
// @Router /api/admin/tests/{id} [put]
func (c *AdminController) UpdateTest(ctx *gin.Context) {
	test, err := c.TestService.GetTest(util.MustParseUint(ctx.Param("id")), true)
	if err != nil {
		adminError(ctx, err)
		return
	}

	var req TestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	test.Title = req.Title
	test.Description = req.Description
	test.Kind = model.TestKind(req.Kind)
	test.IsFree = req.IsFree
	test.Price = req.Price
	test.IsPublished = req.IsPublished
	test.ScheduledAt = req.ScheduledAt
	if err := c.TestService.UpdateTest(test); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, test)
}

// DeleteTest godoc
// @Summary Delete a test
// @Tags admin
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 200 {object} util.Response
// @Router /api/admin/tests/{id} [delete]
func (c *AdminController) DeleteTest(ctx *gin.Context) {
	if err := c.TestService.DeleteTest(util.MustParseUint(ctx.Param("id"))); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model SectionRequest
type SectionRequest struct {
	SectionType  string `json:"sectionType" binding:"required,oneof=listening reading writing speaking"`
	TimeLimit    int    `json:"timeLimit" binding:"required,min=1"`
	OrderIndex   int    `json:"orderIndex"`
	Instructions string `json:"instructions"`
}

// CreateSection godoc
// @Summary Add a section to a test
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param body body SectionRequest true "section"
// @Success 201 {object} util.Response{data=model.Section}
// @Router /api/admin/tests/{id}/sections [post]
func (c *AdminController) CreateSection(ctx *gin.Context) {
	var req SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section := &model.Section{
		TestID:       util.MustParseUint(ctx.Param("id")),
		SectionType:  model.SectionType(req.SectionType),
		TimeLimit:    req.TimeLimit,
		OrderIndex:   req.OrderIndex,
		Instructions: req.Instructions,
	}
	if err := c.TestService.CreateSection(section); err != nil {
		adminError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// UpdateSection godoc
// @Summary Update a section
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sectionId path int true "section id"
// @Param body body SectionRequest true "section"
// @Success 200 {object} util.Response{data=model.Section}
// @Router /api/admin/sections/{sectionId} [put]
func (c *AdminController) UpdateSection(ctx *gin.Context) {
	section, err := c.TestService.GetSection(util.MustParseUint(ctx.Param("sectionId")))
	if err != nil {
		adminError(ctx, err)
		return
	}

	var req SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section.SectionType = model.SectionType(req.SectionType)
	section.TimeLimit = req.TimeLimit
	section.OrderIndex = req.OrderIndex
	section.Instructions = req.Instructions
	if err := c.TestService.UpdateSection(section); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// DeleteSection godoc
// @Summary Delete a section
// @Tags admin
// @Security BearerAuth
// @Param sectionId path int true "section id"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{sectionId} [delete]
func (c *AdminController) DeleteSection(ctx *gin.Context) {
	if err := c.TestService.DeleteSection(util.MustParseUint(ctx.Param("sectionId"))); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model PartRequest
type PartRequest struct {
	PartNumber int    `json:"partNumber" binding:"required,min=1"`
	Passage    string `json:"passage"`
}

// CreatePart godoc
// @Summary Add a part to a section
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sectionId path int true "section id"
// @Param body body PartRequest true "part"
// @Success 201 {object} util.Response{data=model.Part}
// @Router /api/admin/sections/{sectionId}/parts [post]
func (c *AdminController) CreatePart(ctx *gin.Context) {
	var req PartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	part := &model.Part{
		SectionID:  util.MustParseUint(ctx.Param("sectionId")),
		PartNumber: req.PartNumber,
		Passage:    req.Passage,
	}
	if err := c.TestService.CreatePart(part); err != nil {
		adminError(ctx, err)
		return
	}
	util.Created(ctx, part)
}

// UpdatePart godoc
// @Summary Update a part
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param partId path int true "part id"
// @Param body body PartRequest true "part"
// @Success 200 {object} util.Response{data=model.Part}
// @Router /api/admin/parts/{partId} [put]
func (c *AdminController) UpdatePart(ctx *gin.Context) {
	part, err := c.TestService.GetPart(util.MustParseUint(ctx.Param("partId")))
	if err != nil {
		adminError(ctx, err)
		return
	}

	var req PartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	part.PartNumber = req.PartNumber
	part.Passage = req.Passage
	if err := c.TestService.UpdatePart(part); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, part)
}

// DeletePart godoc
// @Summary Delete a part
// @Tags admin
// @Security BearerAuth
// @Param partId path int true "part id"
// @Success 200 {object} util.Response
// @Router /api/admin/parts/{partId} [delete]
func (c *AdminController) DeletePart(ctx *gin.Context) {
	if err := c.TestService.DeletePart(util.MustParseUint(ctx.Param("partId"))); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadPartAudio godoc
// @Summary Upload listening audio for a part
// @Description Stores the file and probes its duration with ffprobe.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param partId path int true "part id"
// @Param file formData file true "audio file"
// @Success 200 {object} util.Response{data=model.Part}
// @Router /api/admin/parts/{partId}/audio [post]
func (c *AdminController) UploadPartAudio(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, duration, err := c.StorageService.UploadPartAudio(ctx.Request.Context(), header)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	part, err := c.TestService.AttachPartAudio(util.MustParseUint(ctx.Param("partId")), url, duration)
	if err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, part)
}

// UploadPartPdf godoc
// @Summary Upload a PDF for a part
// @Tags admin
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param partId path int true "part id"
// @Param file formData file true "pdf file"
// @Success 200 {object} util.Response{data=model.Part}
// @Router /api/admin/parts/{partId}/pdf [post]
func (c *AdminController) UploadPartPdf(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.StorageService.UploadPartPdf(ctx.Request.Context(), header)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	part, err := c.TestService.AttachPartPdf(util.MustParseUint(ctx.Param("partId")), url)
	if err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, part)
}

// swagger:model QuestionRequest
type QuestionRequest struct {
	PartID        *uint           `json:"partId"`
	QuestionType  string          `json:"questionType" binding:"required"`
	QuestionText  string          `json:"questionText" binding:"required"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correctAnswer" binding:"required"`
	Points        float64         `json:"points"`
	Explanation   string          `json:"explanation"`
	OrderIndex    int             `json:"orderIndex"`
}

// CreateQuestion godoc
// @Summary Add a question to a section
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sectionId path int true "section id"
// @Param body body QuestionRequest true "question"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/admin/sections/{sectionId}/questions [post]
func (c *AdminController) CreateQuestion(ctx *gin.Context) {
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question := &model.Question{
		SectionID:     util.MustParseUint(ctx.Param("sectionId")),
		PartID:        req.PartID,
		QuestionType:  req.QuestionType,
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Explanation:   req.Explanation,
		OrderIndex:    req.OrderIndex,
	}
	if err := c.TestService.CreateQuestion(question); err != nil {
		adminError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "question id"
// @Param body body QuestionRequest true "question"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/admin/questions/{questionId} [put]
func (c *AdminController) UpdateQuestion(ctx *gin.Context) {
	question, err := c.TestService.GetQuestion(util.MustParseUint(ctx.Param("questionId")))
	if err != nil {
		adminError(ctx, err)
		return
	}

	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question.PartID = req.PartID
	question.QuestionType = req.QuestionType
	question.QuestionText = req.QuestionText
	question.Options = req.Options
	question.CorrectAnswer = req.CorrectAnswer
	question.Points = req.Points
	question.Explanation = req.Explanation
	question.OrderIndex = req.OrderIndex
	if err := c.TestService.UpdateQuestion(question); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags admin
// @Security BearerAuth
// @Param questionId path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{questionId} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	if err := c.TestService.DeleteQuestion(util.MustParseUint(ctx.Param("questionId"))); err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListQuestions godoc
// @Summary A section's questions with the answer key
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param sectionId path int true "section id"
// @Success 200 {object} util.Response
// @Router /api/admin/sections/{sectionId}/questions [get]
func (c *AdminController) ListQuestions(ctx *gin.Context) {
	questions, err := c.TestService.ListSectionQuestions(util.MustParseUint(ctx.Param("sectionId")))
	if err != nil {
		adminError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// swagger:model GrantRequest
type GrantRequest struct {
	UserID    uint       `json:"userId" binding:"required"`
	TestID    uint       `json:"testId" binding:"required"`
	Reference string     `json:"reference"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// GrantAccess godoc
// @Summary Record completed paid access for a user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GrantRequest true "grant"
// @Success 201 {object} util.Response{data=model.Purchase}
// @Router /api/admin/purchases [post]
func (c *AdminController) GrantAccess(ctx *gin.Context) {
	var req GrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	purchase, err := c.PurchaseService.Grant(req.UserID, req.TestID, req.Reference, req.ExpiresAt)
	if err != nil {
		adminError(ctx, err)
		return
	}
	util.Created(ctx, purchase)
}
