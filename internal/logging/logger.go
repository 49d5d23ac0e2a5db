package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"oceaneye/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writer receives formatted output. Defaults to stderr so command results
	// on stdout stay machine readable.
	Writer io.Writer
	// FilePath, when set, also receives every record as JSON lines.
	FilePath string
	// FileLevel filters the file copy independently. Empty means Level.
	FileLevel string
	// Development forces caller locations on every line.
	Development bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	consoleLevel := new(slog.LevelVar)
	consoleLevel.Set(level)

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	addSource := opts.Development || level <= slog.LevelDebug

	var primary slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		primary = newJSONHandler(writer, consoleLevel, addSource)
	case "console", "":
		primary = newPrettyHandler(writer, consoleLevel, addSource)
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	path := strings.TrimSpace(opts.FilePath)
	if path == "" {
		return slog.New(primary), nil
	}
	file, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	fileLevel := new(slog.LevelVar)
	fileLevel.Set(level)
	if strings.TrimSpace(opts.FileLevel) != "" {
		fileLevel.Set(parseLevel(opts.FileLevel))
	}
	fileSource := opts.Development || fileLevel.Level() <= slog.LevelDebug
	return slog.New(newTeeHandler(primary, newJSONHandler(file, fileLevel, fileSource))), nil
}

// NewFromConfig builds the application logger. Console lines go to w at
// consoleLevel, or at logging.level when consoleLevel is empty; the log file
// always follows logging.level.
func NewFromConfig(cfg *config.Config, w io.Writer, consoleLevel string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: consoleLevel, Writer: w})
	}
	level := cfg.Logging.Level
	if strings.TrimSpace(consoleLevel) != "" {
		level = consoleLevel
	}
	return New(Options{
		Level:     level,
		Format:    cfg.Logging.Format,
		Writer:    w,
		FilePath:  cfg.LogPath(),
		FileLevel: cfg.Logging.Level,
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (io.Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
