package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jhwan-dev/licensegate/internal/infrastructure/config"
)

// Logger is licensegate's structured logger, a thin wrapper around
// slog.Logger. Every record carries the service name and build version as
// default attributes so log aggregation can tell deployments apart.
//
// All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a Logger from the logging section of the configuration.
//
// Format selects the slog handler: "text" gives human-readable development
// output, anything else gets JSON. Output may be "stderr"; the default is
// stdout. An unrecognised level falls back to info rather than failing,
// since a mistyped log level should not stop the service.
//
// Parameters:
//   - cfg: The logging configuration section
//   - version: Build version, attached to every record
//
// Returns:
//   - *Logger: Ready-to-use logger
func New(cfg config.LoggingConfig, version string) *Logger {
	handler := newHandler(cfg).WithAttrs([]slog.Attr{
		slog.String("service", "licensegate"),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(handler)}
}

// newHandler picks the slog handler and destination for the configuration.
func newHandler(cfg config.LoggingConfig) slog.Handler {
	out := io.Writer(os.Stdout)
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(out, opts)
	}
	return slog.NewJSONHandler(out, opts)
}

// parseLevel maps a configured level string to a slog.Level.
// Accepts debug, info, warn/warning, and error; anything else means info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// With returns a child Logger carrying extra default attributes, typically
// a component name:
//
//	hubLog := log.With("component", "hub")
//	hubLog.Info("client connected") // includes component=hub
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Default returns a stdout JSON logger at info level, for the window during
// startup before the configuration file has been read.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
