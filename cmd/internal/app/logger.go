package app

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the app-wide logger type (slog).
type Logger = *slog.Logger

// NewLogger creates a structured logger with an explicit log level.
// Output is JSON by default; VIDCORE_LOG_FORMAT=pretty switches to the
// human-oriented handler for local development (VIDCORE_LOG_COLOR toggles
// ANSI colors).
func NewLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(level),
		AddSource: true,
	}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv("VIDCORE_LOG_FORMAT")), "pretty") {
		color := strings.EqualFold(strings.TrimSpace(os.Getenv("VIDCORE_LOG_COLOR")), "true")
		h = newPrettyHandler(os.Stdout, opts, color)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(h)
	slog.SetDefault(log)
	return log
}

func parseLogLevel(level string) slog.Level {
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
