package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "debug", want: zapcore.DebugLevel},
		{in: "info", want: zapcore.InfoLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "loud", want: zapcore.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewFromLevel(t *testing.T) {
	logger := NewFromLevel("warn", false)
	require.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	// unknown level falls back to default
	logger = NewFromLevel("loud", false)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestComponentAndWith(t *testing.T) {
	logger := NewNop()
	child := logger.Component("guard").With(zap.Int("tab_id", 7))
	require.NotNil(t, child)
	child.Info("ignored")
}

func TestEncoderConfigByMode(t *testing.T) {
	prod := encoderConfig(false)
	assert.Equal(t, "component", prod.NameKey)
	assert.Equal(t, "message", prod.MessageKey)

	dev := encoderConfig(true)
	assert.Equal(t, "N", dev.NameKey)
	assert.Equal(t, "M", dev.MessageKey)
}

func TestNewWritesToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Component("guard").Info("navigation evaluated", zap.String("rating", "DANGER"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"guard"`)
	assert.Contains(t, string(data), `"rating":"DANGER"`)
}
