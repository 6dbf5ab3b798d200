// Package logger builds the process-wide slog logger.
//
// Console output goes through tint with colors when writing to a terminal;
// "json" format uses slog's JSON handler for log shippers.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/colinjianingxie/walletfreak-sub000/config"
)

var atomicLevel = new(slog.LevelVar)

// New builds a logger from configuration and installs it as slog's default.
// In debug mode every record carries its source location. The returned
// close func releases the log file when output_path names one.
func New(cfg config.LoggerConfig, mode string) (*slog.Logger, func() error, error) {
	atomicLevel.Set(ParseLevel(cfg.Level))

	var writer io.Writer
	closeFn := func() error { return nil }
	switch strings.ToLower(cfg.OutputPath) {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(cfg.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, nil, err
		}
		writer = file
		closeFn = file.Close
	}

	logger := slog.New(NewHandler(writer, cfg.Format, mode == "debug"))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// NewHandler returns a JSON handler for format "json" and a tint console
// handler otherwise.
func NewHandler(w io.Writer, format string, addSource bool) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     atomicLevel,
			AddSource: addSource,
		})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      atomicLevel,
		TimeFormat: time.DateTime,
		AddSource:  addSource,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	})
}

// ParseLevel maps a config string to a level; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// SetLevel changes the level of every logger built by New.
func SetLevel(level slog.Level) {
	atomicLevel.Set(level)
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// WithComponent tags a logger with the subsystem that writes through it.
func WithComponent(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}
