package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rohmanhakim/docs-harvester/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONWithServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Level: "info", Output: &buf})

	component := logger.Component(l, "resolver")
	component.Info().Str("ref_id", "0042").Msg("resolved")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "docs-harvester", event["service"])
	assert.Equal(t, "resolver", event["component"])
	assert.Equal(t, "0042", event["ref_id"])
	assert.Equal(t, "resolved", event["message"])
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Level: "warn", Output: &buf})

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_FileReceivesCopy(t *testing.T) {
	var console, file bytes.Buffer
	l := logger.New(logger.Config{Level: "debug", Output: &console, File: &file})

	l.Debug().Msg("both")
	assert.Contains(t, console.String(), "both")
	assert.Contains(t, file.String(), "both")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, logger.ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("bogus"))
}
