package slogger

import (
	"context"
	"testing"

	"javasegment/internal/application/common/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGlobalLogger_RoutesFacadeCalls(t *testing.T) {
	logger, err := logging.NewApplicationLogger(logging.Config{Level: "DEBUG", Format: "json", Output: "buffer"})
	require.NoError(t, err)
	SetGlobalLogger(logger)

	Debug(context.Background(), "debug", nil)
	InfoNoCtx("info", Field("path", "A.java"))
	WithComponent("cli").Warn(context.Background(), "warn", nil)

	entries := logging.BufferedEntries(logger)
	require.Len(t, entries, 3)
	assert.Equal(t, "A.java", entries[1].Metadata["path"])
	assert.Equal(t, "cli", entries[2].Component)
}

func TestConfigure_RejectsInvalidConfig(t *testing.T) {
	assert.Error(t, Configure(logging.Config{Level: "LOUD", Format: "json", Output: "stdout"}))
}
