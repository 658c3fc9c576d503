package infra

import (
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
)

// NewLogger builds the application logger from the config. Text handler
// on stdout; the simulation is a CLI, not a service.
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// Recover logs a panic with its stack and re-raises nothing; use as a
// top-level deferred call in main.
func Recover() {
	if r := recover(); r != nil {
		slog.Error("PANIC recovered",
			slog.Any("panic", r),
			slog.String("stack", string(debug.Stack())))
		os.Exit(1)
	}
}
