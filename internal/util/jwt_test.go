package util

import (
	"testing"
	"time"

	"escape_room_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{Username: "alice"}
	user.ID = "5b0f6c4e-1111-4a5e-9c1d-000000000001"

	token, claims, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, parsed.UserID)
	assert.Equal(t, "alice", parsed.Username)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	user := &model.User{Username: "bob"}
	user.ID = "5b0f6c4e-1111-4a5e-9c1d-000000000002"

	token, _, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	user := &model.User{Username: "carol"}
	user.ID = "5b0f6c4e-1111-4a5e-9c1d-000000000003"

	token, _, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, in := range []string{"", "0", "-1", "abc"} {
		_, ok := ParseID(in)
		assert.False(t, ok, in)
	}
}
