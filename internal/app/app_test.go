package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"escape_room_backend/internal/config"
	"escape_room_backend/internal/model"
	"escape_room_backend/internal/service"
	"escape_room_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t   *testing.T
	app *App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		JWT:       config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
		Game:      config.GameConfig{StartingGold: 100, CatalogCacheTTLSeconds: 60, SessionTTLSeconds: 3600},
	}
	db := testutil.DB(t)
	app := New(cfg, db, nil)
	t.Cleanup(app.limiter.Stop)
	return &testServer{t: t, app: app, db: db}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.app.Router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(s.t, http.StatusCreated, code)

	code, env := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"identifier": username,
		"password":   "password123",
	})
	require.Equal(s.t, http.StatusOK, code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &resp))
	return resp.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

type statusBody struct {
	Status    string `json:"status"`
	AttemptID uint   `json:"attemptId"`
}

func TestStoryFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login("alice")
	story, stages := testutil.CreateStory(t, s.db, 40, "p1", "p2")
	testutil.CreateHint(t, s.db, stages[0].ID, "Try the clock", "help1")
	storyPath := fmt.Sprintf("/api/stories/%d", story.ID)

	code, env := s.do(http.MethodGet, "/api/stories", "", nil)
	require.Equal(t, http.StatusOK, code)
	catalog := decode[[]service.StorySummary](t, env)
	require.Len(t, catalog, 1)

	code, env = s.do(http.MethodGet, storyPath+"/access", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "new", decode[statusBody](t, env).Status)

	code, env = s.do(http.MethodPost, storyPath+"/start", token, nil)
	assert.Equal(t, http.StatusNotFound, code, env.Message)

	code, env = s.do(http.MethodPost, storyPath+"/buy", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "purchased", decode[statusBody](t, env).Status)

	code, _ = s.do(http.MethodPost, storyPath+"/buy", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 60, decode[struct {
		Gold int `json:"gold"`
	}](t, env).Gold)

	code, env = s.do(http.MethodPost, storyPath+"/start", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	started := decode[statusBody](t, env)
	assert.Equal(t, "started", started.Status)
	attemptPath := fmt.Sprintf("/api/attempts/%d", started.AttemptID)

	code, _ = s.do(http.MethodPost, storyPath+"/start", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodGet, attemptPath, token, nil)
	require.Equal(t, http.StatusOK, code)
	attempt := decode[service.AttemptView](t, env)
	assert.Equal(t, 1, attempt.Stage.Level)
	assert.False(t, attempt.IsStale)

	code, _ = s.do(http.MethodPost, attemptPath+"/check_password", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code, "password is required")

	code, env = s.do(http.MethodPost, attemptPath+"/check_password", token, map[string]string{"password": "help1"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[service.PasswordCheck](t, env).NewHint)

	code, env = s.do(http.MethodGet, attemptPath+"/hints", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []service.HintView{{Text: "Try the clock", Trigger: "help1"}}, decode[[]service.HintView](t, env))

	code, env = s.do(http.MethodPost, attemptPath+"/check_password", token, map[string]string{"password": "wrong"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, service.MessageIncorrect, decode[service.PasswordCheck](t, env).Message)

	code, env = s.do(http.MethodPost, attemptPath+"/check_password", token, map[string]string{"password": "p1"})
	require.Equal(t, http.StatusOK, code)
	check := decode[service.PasswordCheck](t, env)
	require.NotNil(t, check.NextAttemptID)

	code, env = s.do(http.MethodGet, attemptPath, token, nil)
	require.Equal(t, http.StatusOK, code)
	stale := decode[service.AttemptView](t, env)
	assert.True(t, stale.IsStale)
	assert.Equal(t, 2, stale.Stage.Level)

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/attempts/%d/check_password", *check.NextAttemptID), token, map[string]string{"password": "p2"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[service.PasswordCheck](t, env).EndStory)

	code, env = s.do(http.MethodGet, storyPath+"/access", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "finished", decode[statusBody](t, env).Status)

	other := s.login("mallory")
	code, _ = s.do(http.MethodGet, attemptPath, other, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCheckPassword_EmptyPasswordIsLogged(t *testing.T) {
	s := newTestServer(t)
	token := s.login("bob")
	story, _ := testutil.CreateStory(t, s.db, 0, "p1")
	storyPath := fmt.Sprintf("/api/stories/%d", story.ID)

	code, env := s.do(http.MethodPost, storyPath+"/buy", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = s.do(http.MethodPost, storyPath+"/start", token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	attemptID := decode[statusBody](t, env).AttemptID

	code, env = s.do(http.MethodPost, fmt.Sprintf("/api/attempts/%d/check_password", attemptID), token, map[string]string{"password": ""})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, service.MessageIncorrect, decode[service.PasswordCheck](t, env).Message)

	var submissions []model.PasswordSubmission
	require.NoError(t, s.db.Where("attempt_id = ?", attemptID).Find(&submissions).Error)
	require.Len(t, submissions, 1)
	assert.Equal(t, "", submissions[0].Password)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	token := s.login("bob")

	pricey, _ := testutil.CreateStory(t, s.db, 1000, "p1")
	empty, _ := testutil.CreateStory(t, s.db, 0)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"missing token", http.MethodGet, "/api/profile", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/profile", "not-a-jwt", http.StatusUnauthorized},
		{"bad id", http.MethodGet, "/api/stories/abc/access", token, http.StatusBadRequest},
		{"unknown story", http.MethodGet, "/api/stories/9999/access", token, http.StatusNotFound},
		{"unknown attempt", http.MethodGet, "/api/attempts/9999", token, http.StatusNotFound},
		{"not enough gold", http.MethodPost, fmt.Sprintf("/api/stories/%d/buy", pricey.ID), token, http.StatusBadRequest},
		{"buy free story", http.MethodPost, fmt.Sprintf("/api/stories/%d/buy", empty.ID), token, http.StatusOK},
		{"story without stages", http.MethodPost, fmt.Sprintf("/api/stories/%d/start", empty.ID), token, http.StatusInternalServerError},
		{"health", http.MethodGet, "/api/health", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.want, code, env.Message)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.login("carol")

	code, _ := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"identifier": "carol", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, code)
}

func TestConfigReloadUpdatesCORS(t *testing.T) {
	s := newTestServer(t)

	preflight := func(origin string) string {
		req := httptest.NewRequest(http.MethodOptions, "/api/stories", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		s.app.Router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		return rec.Header().Get("Access-Control-Allow-Origin")
	}

	assert.Equal(t, "http://localhost:3000", preflight("http://localhost:3000"))
	assert.Empty(t, preflight("https://game.example.com"))

	next := *s.app.Config
	next.CORS = config.CORSConfig{AllowedOrigins: []string{"https://game.example.com"}}
	s.app.applyConfig(&next)

	assert.Equal(t, "https://game.example.com", preflight("https://game.example.com"))
	assert.Empty(t, preflight("http://localhost:3000"))
}
