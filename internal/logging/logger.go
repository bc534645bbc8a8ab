package logging

import (
	"log/slog"
	"os"
	"strings"
)

const serviceName = "agent-distribution"

// Setup installs a JSON logger on stdout as the slog default and returns its
// handler so main can fan it out together with the store handler.
func Setup(level string) slog.Handler {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}).WithAttrs([]slog.Attr{slog.String("service", serviceName)})
	slog.SetDefault(slog.New(handler))
	return handler
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
