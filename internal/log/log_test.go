package log

import (
	"bytes"
	"testing"

	"github.com/illarion/sprintdeck/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "error"

	var buf bytes.Buffer
	l := newLogger(cfg, &buf)
	l.Warn().Msg("hidden")
	l.Error().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerFallsBackToWarn(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "chatty"

	var buf bytes.Buffer
	l := newLogger(cfg, &buf)
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerPretty(t *testing.T) {
	var cfg config.Config
	cfg.Logging.Level = "info"
	cfg.Logging.Pretty = true

	var buf bytes.Buffer
	l := newLogger(cfg, &buf)
	l.Info().Str("key", "jira-domain").Msg("stored")

	assert.Contains(t, buf.String(), "key=jira-domain")
	assert.NotContains(t, buf.String(), "{")
}
