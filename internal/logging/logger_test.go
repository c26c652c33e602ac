package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LevelInfo, FormatJSON, &buf)

	logger.WithFields(map[string]interface{}{
		"portfolio": "P-ALPHA",
		"asOf":      "2025-01-02",
	}).WithError(errors.New("boom")).Info("position resolved")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "position resolved", entry["message"])
	assert.Equal(t, "P-ALPHA", entry["portfolio"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LevelWarn, FormatJSON, &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newLogger(LevelInfo, FormatJSON, &buf)
	_ = parent.WithField("child", true)

	parent.Info("parent")
	assert.NotContains(t, buf.String(), "child")
}

func TestFromContext(t *testing.T) {
	custom := NewLogger(LevelDebug, FormatJSON)
	ctx := WithLogger(context.Background(), custom)

	assert.Same(t, custom, FromContext(ctx))
	assert.Same(t, GetGlobalLogger(), FromContext(context.Background()))
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"WARN":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseLogFormat("text"))
	assert.Equal(t, FormatText, ParseLogFormat("console"))
	assert.Equal(t, FormatJSON, ParseLogFormat("json"))
	assert.Equal(t, FormatJSON, ParseLogFormat("other"))
}
