package logger

import (
	"escape_room_backend/internal/config"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is a no-op logger until InitLogger runs.
var Log = zap.NewNop()

// InitLogger writes JSON lines to a rotated file and, unless disabled, a
// console copy. Every entry carries the service name.
func InitLogger(cfg *config.Config) {
	level := levelOf(cfg.Log.Level, cfg.Server.Mode)
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.Log.File,
				MaxSize:    cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAge:     cfg.Log.MaxAgeDays,
				Compress:   true,
			}),
			level,
		),
	}
	if cfg.Log.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).
		With(zap.String("service", cfg.Server.Name))
}

// For returns the logger of one component ("story", "auth", ...). It is
// resolved on each call so it follows InitLogger.
func For(component string) *zap.Logger {
	return Log.Named(component)
}

// levelOf parses log.level and falls back to debug in debug mode, info
// otherwise.
func levelOf(name, mode string) zapcore.Level {
	if name != "" {
		if l, err := zapcore.ParseLevel(name); err == nil {
			return l
		}
	}
	if mode == "debug" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
