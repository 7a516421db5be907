// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the service.
//
// It defaults to a JSON handler at info level so packages can log before
// InitLogger runs (tests, for instance).
var Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// ParseLevel maps a LOG_LEVEL value onto a slog level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// InitLogger initializes the global Logger with a JSON handler at the given level.
func InitLogger(level string) {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(h)
}
