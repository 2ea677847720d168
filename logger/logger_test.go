package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { Use(false, LevelError, zap.NewNop()) })

	t.Setenv("LOG", "")
	t.Setenv("LOG_LEVEL", "")
	Init()
	assert.False(t, Enabled())

	t.Setenv("LOG", "1")
	Init()
	assert.True(t, Enabled())
	assert.True(t, allowed(LevelInfo))
	assert.False(t, allowed(LevelDebug))

	t.Setenv("LOG_LEVEL", "debug")
	Init()
	assert.True(t, allowed(LevelDebug))

	t.Setenv("LOG_LEVEL", "off")
	Init()
	assert.False(t, Enabled())

	t.Setenv("LOG_LEVEL", "verbose")
	Init()
	assert.True(t, Enabled())
	assert.False(t, allowed(LevelInfo))
}

func TestLevelsFilterMessages(t *testing.T) {
	t.Cleanup(func() { Use(false, LevelError, zap.NewNop()) })

	core, logs := observer.New(zapcore.DebugLevel)
	Use(true, LevelInfo, zap.New(core))

	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	Errorf("Handler: %v", "boom")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "shown 2", entries[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "Handler: boom", entries[1].Message)
	}
}

func TestDisabledIsSilent(t *testing.T) {
	t.Cleanup(func() { Use(false, LevelError, zap.NewNop()) })

	core, logs := observer.New(zapcore.DebugLevel)
	Use(false, LevelDebug, zap.New(core))

	Errorf("nothing")
	L().Info("nothing")
	assert.Zero(t, logs.Len())
}
