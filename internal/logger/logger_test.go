package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/text-to-sql-chat/internal/config"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("hidden")
	log.Warn().Str("session_id", "s1").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat.log")

	var buf bytes.Buffer
	closer, err := Setup(config.LoggingConfig{Level: "bogus", Format: "console", File: path}, &buf)
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, buf.String(), "to file")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
