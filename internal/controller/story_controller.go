package controller

import (
	"escape_room_backend/internal/service"
	"escape_room_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StoryController struct {
	StoryService *service.StoryService
	Manager      *service.StoryManager
	AuthService  *service.AuthService
}

func NewStoryController(storyService *service.StoryService, manager *service.StoryManager, authService *service.AuthService) *StoryController {
	return &StoryController{
		StoryService: storyService,
		Manager:      manager,
		AuthService:  authService,
	}
}

// ListStories godoc
// @Summary Story catalog
// @Tags Stories
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.StorySummary}
// @Router /api/stories [get]
func (c *StoryController) ListStories(ctx *gin.Context) {
	stories, err := c.StoryService.ListStories(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stories)
}

// GetStory godoc
// @Summary Story detail
// @Tags Stories
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Story ID"
// @Success 200 {object} util.Response{data=service.StoryDetail}
// @Failure 404 {object} util.Response "Story not found"
// @Router /api/stories/{id} [get]
func (c *StoryController) GetStory(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	story, err := c.StoryService.GetStory(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, story)
}

// CheckAccess godoc
// @Summary Progress on a story
// @Description Status is one of new, purchased, started, finished
// @Tags Stories
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Story ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "Story not found"
// @Router /api/stories/{id}/access [get]
func (c *StoryController) CheckAccess(ctx *gin.Context) {
	sc, ok := c.load(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.Manager.CheckAccess(sc))
}

// BuyStory godoc
// @Summary Buy a story
// @Tags Stories
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Story ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "Already owned or not enough gold"
// @Failure 404 {object} util.Response "Story not found"
// @Router /api/stories/{id}/buy [post]
func (c *StoryController) BuyStory(ctx *gin.Context) {
	sc, ok := c.load(ctx)
	if !ok {
		return
	}
	next, err := c.Manager.BuyStory(ctx.Request.Context(), sc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, c.Manager.CheckAccess(next))
}

// StartStory godoc
// @Summary Start a purchased story
// @Tags Stories
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "Story ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "Already started"
// @Failure 404 {object} util.Response "Story not found or not purchased"
// @Router /api/stories/{id}/start [post]
func (c *StoryController) StartStory(ctx *gin.Context) {
	sc, ok := c.load(ctx)
	if !ok {
		return
	}
	next, err := c.Manager.StartStory(ctx.Request.Context(), sc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, c.Manager.CheckAccess(next))
}

func (c *StoryController) load(ctx *gin.Context) (service.StoryContext, bool) {
	id, ok := pathID(ctx)
	if !ok {
		return service.StoryContext{}, false
	}
	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return service.StoryContext{}, false
	}
	sc, err := c.Manager.LoadByStory(ctx.Request.Context(), *user, id)
	if err != nil {
		respondError(ctx, err)
		return service.StoryContext{}, false
	}
	return sc, true
}
