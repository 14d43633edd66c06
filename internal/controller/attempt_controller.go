package controller

import (
	"escape_room_backend/internal/service"
	"escape_room_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Manager     *service.StoryManager
	AuthService *service.AuthService
}

func NewAttemptController(manager *service.StoryManager, authService *service.AuthService) *AttemptController {
	return &AttemptController{Manager: manager, AuthService: authService}
}

// CheckPasswordRequest. The password may be empty; only a missing field is
// rejected.
// swagger:model CheckPasswordRequest
type CheckPasswordRequest struct {
	Password *string `json:"password" binding:"required"`
}

// GetAttempt godoc
// @Summary Attempt detail
// @Description isStale is set when the attempt was already solved and progress moved on
// @Tags Attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=service.AttemptView}
// @Failure 403 {object} util.Response "Attempt belongs to another user"
// @Failure 404 {object} util.Response "Attempt not found"
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	sc, ok := c.load(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.Manager.Attempt(sc))
}

// GetHints godoc
// @Summary Unlocked hints
// @Tags Attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Success 200 {object} util.Response{data=[]service.HintView}
// @Failure 403 {object} util.Response "Attempt belongs to another user"
// @Failure 404 {object} util.Response "Attempt not found"
// @Router /api/attempts/{id}/hints [get]
func (c *AttemptController) GetHints(ctx *gin.Context) {
	sc, ok := c.load(ctx)
	if !ok {
		return
	}
	hints, err := c.Manager.GetHints(ctx.Request.Context(), sc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, hints)
}

// CheckPassword godoc
// @Summary Submit a password
// @Description A wrong password is a normal outcome, reported in the message
// @Tags Attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Attempt ID"
// @Param body body CheckPasswordRequest true "Submitted password"
// @Success 200 {object} util.Response{data=service.PasswordCheck}
// @Failure 403 {object} util.Response "Attempt belongs to another user"
// @Failure 404 {object} util.Response "Attempt not found"
// @Router /api/attempts/{id}/check_password [post]
func (c *AttemptController) CheckPassword(ctx *gin.Context) {
	var req CheckPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sc, ok := c.load(ctx)
	if !ok {
		return
	}
	result, err := c.Manager.ValidatePassword(ctx.Request.Context(), sc, *req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

func (c *AttemptController) load(ctx *gin.Context) (service.StoryContext, bool) {
	id, ok := pathID(ctx)
	if !ok {
		return service.StoryContext{}, false
	}
	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return service.StoryContext{}, false
	}
	sc, err := c.Manager.LoadByAttempt(ctx.Request.Context(), *user, id)
	if err != nil {
		respondError(ctx, err)
		return service.StoryContext{}, false
	}
	return sc, true
}
