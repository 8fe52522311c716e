package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	logger, err := New(Options{Level: "debug", Format: "console", Writer: &buf, Color: &noColor})
	require.NoError(t, err)

	NewComponentLogger(logger, "resolver").Info("resolved card",
		slog.String("name", "Lightning Bolt"),
		slog.Int("copies", 4))

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "[resolver] resolved card")
	assert.Contains(t, line, `name="Lightning Bolt"`)
	assert.Contains(t, line, "copies=4")
	assert.NotContains(t, line, "\x1b[", "color codes must be absent when disabled")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Error("write failed", Error(errors.New("disk full")))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "error", record["level"])
	assert.Equal(t, "write failed", record["msg"])
	assert.Equal(t, "disk full", record["error"])
	assert.Contains(t, record, "ts")
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	NewComponentLogger(nil, "cache").Info("discarded")
}
