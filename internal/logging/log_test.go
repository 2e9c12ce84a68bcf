package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.DebugLevel, New("debug", nil).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New(" WARN ", nil).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("invalid", nil).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", nil).GetLevel())
}

func TestNewWritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New("info", &buf)
	log.Debug().Msg("hidden")
	log.Info().Str("granularity", "H1").Int("score", -2).Msg("direction")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "direction", entry["message"])
	assert.Equal(t, "H1", entry["granularity"])
	assert.Equal(t, float64(-2), entry["score"])
	assert.Contains(t, entry, "time")
}

func TestConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := Console("info", &buf)
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}
