package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesObjectUnderKey(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))

	log.InfoObj("stats posted", "stats", map[string]any{"servers": 3})
	log.DebugObj("debug", "k", 1)
	log.WarnObj("warn", "k", 2)
	log.ErrorObj("error", "k", 3)

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "stats posted", entries[0].Message)
	assert.Equal(t, map[string]any{"servers": 3}, entries[0].ContextMap()["stats"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestPackageHelpersAreNoopsBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	assert.NoError(t, Close())
}
