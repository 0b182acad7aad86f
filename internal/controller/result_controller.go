package controller

import (
	"errors"
	"net/http"

	"ielts_prep_backend/internal/model"
	"ielts_prep_backend/internal/service"
	"ielts_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ResultController struct {
	Scoring *service.ScoringService
}

func NewResultController(scoring *service.ScoringService) *ResultController {
	return &ResultController{Scoring: scoring}
}

// List godoc
// @Summary The caller's result history with computed summaries
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/results [get]
func (c *ResultController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	page, limit := util.ParsePageLimit(ctx.Query("page"), ctx.Query("limit"))

	results, total, err := c.Scoring.ListUserResults(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: results, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Scored review of one result
// @Description Grading happens on display: answers are compared against the
// @Description current key, so question fixes apply retroactively.
// @Tags results
// @Produce json
// @Security BearerAuth
// @Param id path string true "result id"
// @Success 200 {object} util.Response{data=service.ResultView}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/results/{id} [get]
func (c *ResultController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Scoring.GetResultView(ctx.Param("id"), claims.UserID, claims.Role == model.Admin)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTestNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Error(ctx, http.StatusForbidden, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, view)
}
