package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/vanshika/txlens/internal/config"
)

// New builds a slog.Logger configured according to the provided logging config.
func New(cfg config.LoggingConfig) *slog.Logger {
	return slog.New(NewHandler(os.Stdout, cfg))
}

// NewHandler selects the slog handler for cfg. Colored output is rendered by
// charmbracelet/log and is meant for local terminals; json wins over color.
func NewHandler(w io.Writer, cfg config.LoggingConfig) slog.Handler {
	level := parseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: cfg.IncludeCaller})
	}
	if cfg.Colored {
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmLevel(level),
			ReportCaller:    cfg.IncludeCaller,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, AddSource: cfg.IncludeCaller})
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

func charmLevel(level slog.Level) charmlog.Level {
	switch level {
	case slog.LevelDebug:
		return charmlog.DebugLevel
	case slog.LevelWarn:
		return charmlog.WarnLevel
	case slog.LevelError:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}
