package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForServiceTagsRecords(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	log := ForService("sensor")
	log.Info("channel read failed", "channel", "moisture")

	var record map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &record))
	assert.Equal(t, "sensor", record["service"])
	assert.Equal(t, "channel read failed", record["msg"])
	assert.Equal(t, "moisture", record["channel"])
}

func TestCustomLevelNames(t *testing.T) {
	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	Structured().Log(t.Context(), LevelTrace, "forward pass detail")
	Structured().Log(t.Context(), LevelFatal, "unusable configuration")

	lines := strings.Split(strings.TrimSpace(structured.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"TRACE"`)
	assert.Contains(t, lines[1], `"level":"FATAL"`)
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "alerts.log")

	log, closer, err := NewFileLogger(path, "alert", slog.LevelInfo)
	require.NoError(t, err)

	log.Info("alert sent", "type", "water_stress", "attempt", 1)
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &record))
	assert.Equal(t, "alert", record["service"])
	assert.Equal(t, "alert sent", record["msg"])
	assert.Equal(t, "water_stress", record["type"])
}

func TestFileLoggerLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.log")

	log, closer, err := NewFileLogger(path, "scheduler", slog.LevelWarn)
	require.NoError(t, err)

	log.Debug("battery check", "voltage", 3.9)
	log.Info("cycle complete")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))
}
