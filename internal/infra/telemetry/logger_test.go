package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wpmcp/internal/domain"
)

func TestNewLogger_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wpmcp.log")

	logger, err := NewLogger(domain.LoggingConfig{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug("tool call finished", ToolField("demo"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tool":"demo"`)
	assert.Contains(t, string(data), "tool call finished")
}

func TestNewLogger_Level(t *testing.T) {
	logger, err := NewLogger(domain.LoggingConfig{Level: "WARN"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(domain.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	level, err := parseLevel("  ")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}
