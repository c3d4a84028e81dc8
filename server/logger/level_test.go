package logger_test

import (
	"testing"

	"github.com/sigrelay/sigrelay/server/logger"
	"github.com/stretchr/testify/assert"
)

func TestLevel_names(t *testing.T) {
	t.Parallel()

	levels := map[string]logger.Level{
		"error":    logger.LevelError,
		"warn":     logger.LevelWarn,
		"info":     logger.LevelInfo,
		"debug":    logger.LevelDebug,
		"trace":    logger.LevelTrace,
		"disabled": logger.LevelDisabled,
	}

	for name, level := range levels {
		assert.Equal(t, name, level.String())

		parsed, ok := logger.LevelFromString(name)
		assert.True(t, ok, "parse %s", name)
		assert.Equal(t, level, parsed, "parse %s", name)
	}

	parsed, ok := logger.LevelFromString("verbose")
	assert.False(t, ok)
	assert.Equal(t, logger.LevelUnknown, parsed)

	assert.Equal(t, "Unknown(-1)", logger.LevelUnknown.String())
	assert.Equal(t, "Unknown(-3)", logger.Level(-3).String())
}

func TestLevel_asConfig(t *testing.T) {
	t.Parallel()

	// A single Level configures every namespace alike.
	log := logger.New().WithConfig(logger.LevelInfo).WithNamespace("main:relay:ws")

	assert.Equal(t, logger.LevelInfo, log.Level())
	assert.True(t, log.IsLevelEnabled(logger.LevelWarn))
	assert.True(t, log.IsLevelEnabled(logger.LevelInfo))
	assert.False(t, log.IsLevelEnabled(logger.LevelDebug), "per-frame logs stay off at info")

	disabled := log.WithConfig(logger.LevelDisabled)
	assert.False(t, disabled.IsLevelEnabled(logger.LevelError))
}
