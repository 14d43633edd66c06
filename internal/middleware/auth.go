package middleware

import (
	"context"
	"escape_room_backend/internal/config"
	"escape_room_backend/internal/util"
	"escape_room_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionChecker rejects tokens that were revoked before they expired.
type SessionChecker interface {
	CheckSession(ctx context.Context, claims *util.Claims) error
}

func AuthMiddleware(cfg *config.Config, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.For("auth").Debug("JWT rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if sessions != nil {
			if err := sessions.CheckSession(c.Request.Context(), claims); err != nil {
				logger.For("auth").Debug("Session rejected", zap.String("user_id", claims.UserID), zap.Error(err))
				util.Unauthorized(c)
				c.Abort()
				return
			}
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}
