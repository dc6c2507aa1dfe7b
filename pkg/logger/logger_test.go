package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	log := New("error")
	defer Sync(log)

	assert.False(t, log.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Desugar().Core().Enabled(zapcore.ErrorLevel))
}

func TestIsProd(t *testing.T) {
	t.Setenv("GO_ENV", "\"Production\"")
	assert.True(t, isProd())

	t.Setenv("GO_ENV", "dev")
	assert.False(t, isProd())
}
