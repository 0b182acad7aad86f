package controller

import (
	"errors"
	"net/http"

	"ielts_prep_backend/internal/exam"
	"ielts_prep_backend/internal/service"
	"ielts_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SessionController is the HTTP face of the exam session engine. Every route
// is keyed by the authenticated user plus the test id in the path; there is
// no session id on the wire.
type SessionController struct {
	Sessions *service.ExamSessionService
}

func NewSessionController(sessions *service.ExamSessionService) *SessionController {
	return &SessionController{Sessions: sessions}
}

func sessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrTestNotFound), errors.Is(err, util.ErrTestNotPublished),
		errors.Is(err, util.ErrSectionNotFound), errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, util.ErrQuestionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrNoAccess), errors.Is(err, util.ErrNotYetScheduled),
		errors.Is(err, util.ErrPermissionDenied):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAlreadyTaken):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, exam.ErrNotInSelection), errors.Is(err, exam.ErrNotInExam),
		errors.Is(err, exam.ErrNoSectionPicked), errors.Is(err, exam.ErrSectionCompleted),
		errors.Is(err, exam.ErrSectionMismatch), errors.Is(err, exam.ErrTransitionPending),
		errors.Is(err, exam.ErrNothingCompleted):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrResultSaveFailed):
		util.Error(ctx, http.StatusInternalServerError, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func (c *SessionController) ids(ctx *gin.Context) (userID, testID uint, ok bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, 0, false
	}
	return claims.UserID, util.MustParseUint(ctx.Param("id")), true
}

// Start godoc
// @Summary Open or resume an exam session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/tests/{id}/session/start [post]
func (c *SessionController) Start(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	view, err := c.Sessions.StartSession(ctx.Request.Context(), userID, testID)
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Pick godoc
// @Summary Pick a section, starting the interstitial
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param sectionId path int true "section id"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/tests/{id}/session/sections/{sectionId}/pick [post]
func (c *SessionController) Pick(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	delay, err := c.Sessions.PickSection(userID, testID, util.MustParseUint(ctx.Param("sectionId")))
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"transitionSeconds": delay})
}

// Enter godoc
// @Summary Enter the picked section and receive its paper
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param sectionId path int true "section id"
// @Success 200 {object} util.Response{data=service.SectionPaper}
// @Failure 409 {object} util.Response
// @Router /api/tests/{id}/session/sections/{sectionId}/enter [post]
func (c *SessionController) Enter(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	paper, err := c.Sessions.EnterSection(ctx.Request.Context(), userID, testID, util.MustParseUint(ctx.Param("sectionId")))
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

// swagger:model SaveAnswerRequest
type SaveAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Position   int    `json:"position"` // blank index; negative replaces the whole value
	Value      string `json:"value"`
}

// SaveAnswer godoc
// @Summary Record one answer on the active section
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param body body SaveAnswerRequest true "answer"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/tests/{id}/session/answers [put]
func (c *SessionController) SaveAnswer(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	var req SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := c.Sessions.SaveAnswer(userID, testID, req.QuestionID, req.Position, req.Value); err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Finish godoc
// @Summary Complete the active section
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param sectionId path int true "section id"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response
// @Router /api/tests/{id}/session/sections/{sectionId}/finish [post]
func (c *SessionController) Finish(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	view, err := c.Sessions.FinishSection(userID, testID)
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Exit godoc
// @Summary Leave the active section without completing it
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Param sectionId path int true "section id"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response
// @Router /api/tests/{id}/session/sections/{sectionId}/exit [post]
func (c *SessionController) Exit(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	view, err := c.Sessions.ExitSection(userID, testID)
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Timer godoc
// @Summary Poll the section and global countdowns
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 200 {object} util.Response{data=service.TimerView}
// @Router /api/tests/{id}/session/timer [get]
func (c *SessionController) Timer(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	view, err := c.Sessions.TimerState(ctx.Request.Context(), userID, testID)
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary Finalize the attempt and persist the answer snapshot
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/tests/{id}/session/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	userID, testID, ok := c.ids(ctx)
	if !ok {
		return
	}
	result, err := c.Sessions.Submit(ctx.Request.Context(), userID, testID)
	if err != nil {
		sessionError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"resultId": result.ID})
}
