package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a sugared zap logger configured for the given log level.
// Supported levels: "debug", "info", "warn", "error", "fatal", "panic".
// Any unknown value falls back to "info".
//
// Logs are human-readable unless GO_ENV=production, in which case they are
// JSON. Timestamps go under "ts" in ISO-8601.
func New(level string) *zap.SugaredLogger {
	var cfg zap.Config
	if isProd() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic(err) // configuration errors are fatal on startup
	}
	return logger.Sugar()
}

// Sync flushes any buffered log entries. Should be called on shutdown.
// The error is dropped: syncing stderr returns "invalid argument" on some
// platforms.
func Sync(l *zap.SugaredLogger) {
	if l == nil {
		return
	}
	_ = l.Sync()
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	case "panic":
		return zap.PanicLevel
	default:
		return zap.InfoLevel
	}
}

func isProd() bool {
	env := strings.Trim(strings.TrimSpace(os.Getenv("GO_ENV")), "\"")
	return strings.EqualFold(env, "production")
}
