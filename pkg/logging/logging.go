// Package logging configures the process-wide zerolog logger.
//
// The interactive dashboard owns the terminal, so logs go to a file by
// default. Passing "-" as the file writes a console format to stderr instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/reviews_copilot/pkg/config"
)

// Setup initializes the global logger from the log configuration.
// The returned closer releases the log file, if one was opened.
func Setup(cfg config.LogConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var (
		output io.Writer
		closer io.Closer = nopCloser{}
	)

	switch cfg.File {
	case "-":
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	case "":
		output = io.Discard
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = f
		closer = f
	}

	log.Logger = zerolog.New(output).
		With().
		Timestamp().
		Str("service", "rc").
		Logger()

	return closer, nil
}

// For returns a logger tagged with a component name
func For(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
