package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"escape_room_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger_ComponentAndService(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	cfg := &config.Config{
		Server: config.ServerConfig{Name: "escape-room-test", Mode: "release"},
		Log:    config.LogConfig{File: file, MaxSizeMB: 1},
	}
	t.Cleanup(func() { Log = zap.NewNop() })

	InitLogger(cfg)
	For("story").Info("Story started", zap.Uint("story_id", 7))
	For("story").Debug("dropped below info")
	require.NoError(t, Log.Sync())

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry), string(data))
	assert.Equal(t, "story", entry["component"])
	assert.Equal(t, "escape-room-test", entry["service"])
	assert.Equal(t, "Story started", entry["msg"])
	assert.EqualValues(t, 7, entry["story_id"])
}

func TestLevelOf(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, levelOf("warn", "debug"))
	assert.Equal(t, zapcore.DebugLevel, levelOf("", "debug"))
	assert.Equal(t, zapcore.InfoLevel, levelOf("", "release"))
	assert.Equal(t, zapcore.InfoLevel, levelOf("loud", "release"))
}
