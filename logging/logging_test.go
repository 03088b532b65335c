package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})
	log.Debug("hidden")
	log.Info("exploration started", "mode", "subspace")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "exploration started", rec["msg"])
	assert.Equal(t, "subspace", rec["mode"])
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "console", Output: &buf})
	log.Debug("found satisfying state", "found", 3)

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "found satisfying state")
	assert.Contains(t, out, "found=3")
	assert.NotContains(t, out, "\x1b[", "no color codes outside a terminal")
}
