package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).WithFields(map[string]interface{}{"trigger": "notify-user-created"})

	log.Info("sent", map[string]interface{}{
		"status": 204,
		"error":  errors.New("boom"),
	})
	log.WithError(errors.New("bad")).Warn("warned", nil)

	entries := logs.All()
	assert.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, "notify-user-created", fields["trigger"])
	assert.EqualValues(t, 204, fields["status"])
	assert.Equal(t, "boom", fields["error"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "bad", entries[1].ContextMap()["error"])
}

func TestNew_Level(t *testing.T) {
	assert.True(t, New("debug", "json").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, New("warn", "console").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, New("nonsense", "json").Core().Enabled(zapcore.InfoLevel))
	assert.False(t, New("nonsense", "json").Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	log.Error("ignored", map[string]interface{}{"k": "v"})
	log.With(nil).Debug("ignored", nil)
}
