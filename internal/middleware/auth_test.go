package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"escape_room_backend/internal/config"
	"escape_room_backend/internal/model"
	"escape_room_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionCheckerFunc func(ctx context.Context, claims *util.Claims) error

func (f sessionCheckerFunc) CheckSession(ctx context.Context, claims *util.Claims) error {
	return f(ctx, claims)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret"}}
	user := &model.User{Username: "alice"}
	user.ID = "user-1"

	token, claims, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)

	revoked := map[string]bool{}
	checker := sessionCheckerFunc(func(ctx context.Context, c *util.Claims) error {
		if revoked[c.ID] {
			return util.ErrSessionExpired
		}
		return nil
	})

	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg, checker), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).UserID)
	})

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := call("Bearer " + token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, call("").Code)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer garbage").Code)

	other, _, err := util.GenerateJWT(user, "another-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+other).Code)

	revoked[claims.ID] = true
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
}
