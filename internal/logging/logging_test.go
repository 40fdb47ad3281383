package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/andywolf/skillkit/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.WarnLevel,
		"bogus": zapcore.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	logger := New(config.LogConfig{Level: "error", Format: "json"})
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))

	logger = New(config.LogConfig{Level: "debug", Format: "console"})
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := New(config.LogConfig{Level: "info"})
	assert.Same(t, l, OrNop(l))
}
