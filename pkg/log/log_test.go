package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewHandler(&buf, slog.LevelInfo, FormatJSON, false))
	logger.Debug("hidden")
	logger.Info("run finished", "execution_id", "exec-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "run finished", record["msg"])
	assert.Equal(t, "exec-1", record["execution_id"])
}

func TestNewHandler_PrettyWithoutColor(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewHandler(&buf, slog.LevelInfo, FormatPretty, false))
	logger.Info("run finished", "execution_id", "exec-1")

	assert.Contains(t, buf.String(), "run finished")
	assert.Contains(t, buf.String(), "execution_id=exec-1")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewHandler(&buf, slog.LevelWarn, FormatText, true))
	logger.Info("hidden")
	logger.Warn("slow node")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=\"slow node\"")
}
