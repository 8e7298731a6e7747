package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func restore(t *testing.T) {
	t.Helper()
	origLogf, origLog := Logf, L()
	t.Cleanup(func() {
		Use(origLog)
		Logf = origLogf
	})
}

func TestSetLogger(t *testing.T) {
	restore(t)

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("test message")
	assert.True(t, called)

	called = false
	SetLogger(nil)
	Logf("test")
	assert.False(t, called, "nil installs a no-op")
}

func TestUse_RoutesLogfAndL(t *testing.T) {
	restore(t)

	core, logs := observer.New(zapcore.InfoLevel)
	Use(zap.New(core))

	Logf("loaded %d parameters", 15)
	L().Warn("calibrated", zap.Float64("FacePositionX", 5))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "loaded 15 parameters", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, 5.0, entries[1].ContextMap()["FacePositionX"])
	assert.Same(t, L(), zap.L())
}

func TestInit(t *testing.T) {
	restore(t)

	require.NoError(t, Init("debug", true))
	assert.True(t, L().Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn", false))
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, Init("loud", false))
}

func TestLogf_Default(t *testing.T) {
	require.NotNil(t, Logf)
	assert.NotPanics(t, func() { Logf("test message: %s", "value") })
	assert.NotPanics(t, Sync)
}
