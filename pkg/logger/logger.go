package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	level  = new(slog.LevelVar)
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
)

type Options struct {
	Level string
	File  string
}

// Configure rebuilds the shared logger from config values. A bad level or an
// unwritable file is reported but never leaves the logger unusable: the
// previous level is kept and output falls back to stdout.
func Configure(opts Options) error {
	var levelErr error
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := ParseLevel(opts.Level)
		if err != nil {
			levelErr = err
		} else {
			level.Set(parsed)
		}
	}

	writer := io.Writer(os.Stdout)
	var fileErr error
	if strings.TrimSpace(opts.File) != "" {
		if mkErr := os.MkdirAll(filepath.Dir(opts.File), 0o755); mkErr != nil {
			fileErr = mkErr
		} else if file, openErr := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); openErr != nil {
			fileErr = openErr
		} else {
			writer = io.MultiWriter(os.Stdout, file)
		}
	}

	Logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))

	return errors.Join(levelErr, fileErr)
}

func SetLevel(l slog.Level) {
	level.Set(l)
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", value)
	}
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
