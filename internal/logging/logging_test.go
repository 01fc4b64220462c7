package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Info().Str("video", "a.mp4").Msg("extracting")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "a.mp4", entry["video"])
	assert.Equal(t, "extracting", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewLogger(&a, &b)
	logger.Warn().Msg("skipped frame")

	assert.Contains(t, a.String(), "skipped frame")
	assert.Contains(t, b.String(), "skipped frame")
}
