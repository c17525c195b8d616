// Package logging настраивает slog-логгер приложения.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config параметры логирования.
type Config struct {
	Level   string
	Verbose bool
	JSON    bool
}

// ParseLevel переводит строковый уровень в slog.Level. Неизвестные значения дают info.
func ParseLevel(level string) slog.Level {
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

// New создаёт логгер, пишущий в stderr, и делает его логгером по умолчанию.
func New(cfg Config) *slog.Logger {
	logger := NewWithWriter(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

// NewWithWriter создаёт логгер поверх произвольного writer.
func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	lvl := ParseLevel(cfg.Level)
	if cfg.Verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}

	// JSON в production, текст для терминала
	if cfg.JSON || os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard логгер, который ничего не пишет. Удобен в тестах.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
