package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	log, err := New("production")
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewCLI_Development(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log, err := NewCLI("development")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
