package log

import (
	"io"
	"os"

	"github.com/illarion/sprintdeck/internal/config"
	"github.com/rs/zerolog"
)

type Logger = zerolog.Logger

// NewLogger builds the process logger. Logs go to stderr so that command
// output on stdout stays clean.
func NewLogger(cfg config.Config) Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.Config, out io.Writer) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
