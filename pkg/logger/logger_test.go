package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFacadeWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := L()
	Set(zap.New(core))
	defer Set(prev)

	Info("request_end", map[string]interface{}{"statusCode": 200, "path": "/api/analyze"})
	Error("advisor failed", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "request_end", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.EqualValues(t, 200, ctx["statusCode"])
	assert.Equal(t, "/api/analyze", ctx["path"])

	assert.Equal(t, "advisor failed", entries[1].Message)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	prev := L()
	defer Set(prev)

	require.NoError(t, Init("production", "shouting"))
	assert.True(t, L().Core().Enabled(zap.InfoLevel))
	assert.False(t, L().Core().Enabled(zap.DebugLevel))
}
