package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "info", "json")
	require.NoError(t, err)

	logger.Named("catalog").Warn("fetch failed", "provider", "openai", "error", errors.New("boom"), "dangling")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "fetch failed", line["message"])
	assert.Equal(t, "catalog", line["component"])
	assert.Equal(t, "openai", line["provider"])
	assert.Equal(t, "boom", line["error"])
	assert.NotContains(t, line, "dangling")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Debug("hidden too")
	assert.Zero(t, buf.Len())

	logger.Error("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{name: "unknown level", level: "loud", format: "json"},
		{name: "unknown format", level: "info", format: "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWithWriter(&bytes.Buffer{}, tt.level, tt.format)
			assert.Error(t, err)
		})
	}
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Named("x").Error("nothing", "k", "v")
	})
}
