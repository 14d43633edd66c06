package controller

import (
	"escape_room_backend/internal/service"
	"escape_room_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// RegisterRequest defines model for registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest accepts the email or the username as identifier.
// swagger:model LoginRequest
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Gold     int    `json:"gold"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account credited with the starting gold
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "Registration data"
// @Success 201 {object} util.Response{data=UserProfile}
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 409 {object} util.Response "Email or username taken"
// @Failure 500 {object} util.Response "Internal error"
// @Router /api/auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, UserProfile{ID: user.ID, Username: user.Username, Email: user.Email, Gold: user.Gold})
}

// Login godoc
// @Summary Log in
// @Description Exchanges credentials for a bearer token
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=LoginResponse}
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 401 {object} util.Response "Invalid credentials"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, LoginResponse{
		Token: token,
		User:  UserProfile{ID: user.ID, Username: user.Username, Email: user.Email, Gold: user.Gold},
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current bearer token
// @Tags Auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetUserFromContext(ctx)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Profile godoc
// @Summary Current user
// @Description Returns the authenticated user with the current gold balance
// @Tags Auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=UserProfile}
// @Failure 404 {object} util.Response "User not found"
// @Router /api/profile [get]
func (c *AuthController) Profile(ctx *gin.Context) {
	user, err := c.AuthService.CurrentUser(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, UserProfile{ID: user.ID, Username: user.Username, Email: user.Email, Gold: user.Gold})
}
