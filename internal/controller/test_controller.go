package controller

import (
	"errors"

	"ielts_prep_backend/internal/service"
	"ielts_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TestController struct {
	TestService *service.TestService
}

func NewTestController(testService *service.TestService) *TestController {
	return &TestController{TestService: testService}
}

// List godoc
// @Summary List published tests
// @Tags tests
// @Produce json
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Param kind query string false "mock or practice"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/tests [get]
func (c *TestController) List(ctx *gin.Context) {
	page, limit := util.ParsePageLimit(ctx.Query("page"), ctx.Query("limit"))
	kind := ctx.Query("kind")

	tests, total, err := c.TestService.ListTests(page, limit, kind, false)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: tests, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Test detail with sections and the caller's access verdict
// @Description For mock tests scheduled in the future the verdict carries
// @Description waitSeconds, which the client renders as a live countdown.
// @Tags tests
// @Produce json
// @Param id path int true "test id"
// @Success 200 {object} util.Response{data=service.TestOverview}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id} [get]
func (c *TestController) Get(ctx *gin.Context) {
	testID := util.MustParseUint(ctx.Param("id"))

	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	overview, err := c.TestService.GetOverview(userID, testID)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, overview)
}

// Access godoc
// @Summary Entry gate verdict for the authenticated user
// @Tags tests
// @Produce json
// @Security BearerAuth
// @Param id path int true "test id"
// @Success 200 {object} util.Response{data=exam.AccessDecision}
// @Failure 404 {object} util.Response
// @Router /api/tests/{id}/access [get]
func (c *TestController) Access(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	testID := util.MustParseUint(ctx.Param("id"))

	overview, err := c.TestService.GetOverview(claims.UserID, testID)
	if err != nil {
		if errors.Is(err, util.ErrTestNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, overview.Access)
}
