package config

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger creates a new logger based on the configuration.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	// Set log level
	var level zerolog.Level
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	return zerolog.New(newLogWriter(cfg)).With().Timestamp().Logger()
}

// newLogWriter builds the log destination: stdout, optionally teed into a
// size-rotated file.
func newLogWriter(cfg LoggerConfig) io.Writer {
	var out io.Writer = os.Stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	if cfg.File == "" {
		return out
	}

	// The file always receives JSON, whatever the console format.
	rotating := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
	}
	return zerolog.MultiLevelWriter(out, rotating)
}
