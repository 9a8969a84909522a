package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/velmie/x/envconf/internal/logging"
	"github.com/velmie/x/envconf/settings"
)

func TestNew(t *testing.T) {
	logger, err := logging.New("debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	_ = logger.Sync()
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := logging.New("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func TestAdapt(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var log settings.Logger = logging.Adapt(zap.New(core))
	log.Info("configuration loaded", "configuration", "Prod", "settings", 3)
	log.Error("configuration is invalid", "failures", 2)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "configuration loaded", entries[0].Message)
	assert.Equal(t, map[string]any{"configuration": "Prod", "settings": int64(3)}, entries[0].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}
