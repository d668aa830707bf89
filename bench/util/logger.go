package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

type LoggerConfig struct {
	// Type is one of text, json or plain. plain uses the zerolog console writer.
	Type  string
	Level string
	// File is optional, output goes to stderr when empty.
	File string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds the process logger. The returned slog.Logger is for the command
// itself, the log.Logger is handed to trees. The closer releases the log file.
// The configuration is validated before the log file is opened.
func NewLogger(cfg LoggerConfig) (*slog.Logger, log.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	zlevel := zerolog.InfoLevel
	switch cfg.Type {
	case "", "text", "json":
	case "plain":
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		if parsed != zerolog.NoLevel {
			zlevel = parsed
		}
	default:
		return nil, nil, nil, fmt.Errorf("unknown log type %q", cfg.Type)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("error opening log file: %w", err)
		}
		out = file
		closer = file
	}

	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: true}
	switch cfg.Type {
	case "json":
		logger := slog.New(slog.NewJSONHandler(out, handlerOpts))
		return logger, NewSlogWrapper(logger), closer, nil
	case "plain":
		treeLogger := log.NewLogger(out, log.LevelOption(zlevel), log.ColorOption(false))
		return slog.New(slog.NewTextHandler(out, handlerOpts)), treeLogger, closer, nil
	default:
		logger := slog.New(slog.NewTextHandler(out, handlerOpts))
		return logger, NewSlogWrapper(logger), closer, nil
	}
}
