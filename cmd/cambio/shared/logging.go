package shared

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/zerolog"
)

// SetupLogger configures zerolog with pretty console output
func SetupLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetupStructuredLogger configures zerolog for structured (JSON) output
func SetupStructuredLogger(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	return zerolog.New(os.Stderr).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps the debug|info|warn|error names used by flags and config.
func ParseLevel(name string) (zerolog.Level, error) {
	switch name {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", name)
	}
}

// NewLogger builds a console or JSON logger at the named level.
func NewLogger(level string, json bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if json {
		return SetupStructuredLogger(lvl), nil
	}
	return SetupLogger(false).Level(lvl), nil
}

// NewBotLogger builds the charmbracelet logger handed to built-in bots, at
// the same named level as the session logger.
func NewBotLogger(w io.Writer, level string, json bool) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := log.Options{ReportTimestamp: true, TimeFormat: time.Kitchen}
	switch lvl {
	case zerolog.DebugLevel:
		opts.Level = log.DebugLevel
	case zerolog.WarnLevel:
		opts.Level = log.WarnLevel
	case zerolog.ErrorLevel:
		opts.Level = log.ErrorLevel
	default:
		opts.Level = log.InfoLevel
	}
	if json {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts), nil
}
