package logging

import (
	"log/slog"
	"os"
	"strings"
)

// LevelFromEnv maps the LOG_LEVEL environment variable onto a slog
// level, defaulting to info when unset or unknown.
func LevelFromEnv() slog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))) {
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

// Setup installs the global slog logger: JSON to stdout, level taken
// from LOG_LEVEL. The database handler is attached later in main once
// the connection exists.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: LevelFromEnv(),
	})
	slog.SetDefault(slog.New(handler))
}
