package controller

import (
	"errors"
	"escape_room_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError is the single place where domain errors become HTTP statuses.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrUnauthorized):
		util.Forbidden(ctx, err.Error())
	case errors.Is(err, util.ErrAlreadyOwned),
		errors.Is(err, util.ErrAlreadyStarted),
		errors.Is(err, util.ErrInsufficientFunds):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials),
		errors.Is(err, util.ErrSessionExpired):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	default:
		// ErrMalformedContent, ErrAmbiguousResult and anything unexpected.
		util.LogInternalError(ctx, err)
	}
}

// pathID parses the :id route parameter, answering 400 when it is not a
// positive integer.
func pathID(ctx *gin.Context) (uint, bool) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid id")
	}
	return id, ok
}
