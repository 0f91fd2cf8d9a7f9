package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

var L = slog.Default()

// Init builds the process-wide JSON logger and installs it as the slog
// default. Call once at startup, after the config is loaded.
func Init(level string) *slog.Logger {
	return initWriter(os.Stdout, level)
}

func initWriter(w io.Writer, levelStr string) *slog.Logger {
	level := ParseLevel(levelStr)
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	L = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(L)
	L.Info("logger initialized", "level", level.String())
	return L
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
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
