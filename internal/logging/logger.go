// Package logging provides structured logging configuration using log/slog.
//
// Every command logs to the console and, when a directory is configured, to a
// rotating combined log plus a rotating error-only log. Each run carries a run
// ID in its context so all entries of one conversion can be correlated.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOutput describes the rotating log files of one command.
// An empty Dir disables file output.
type FileOutput struct {
	Dir       string
	Name      string
	MaxSizeMB int
	MaxFiles  int
}

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// The returned closer flushes and closes the log files; it is safe to call
// when no files were configured.
func Setup(level, format string, files FileOutput) io.Closer {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	handlers := []slog.Handler{newHandler(os.Stdout, format, opts)}
	var closers multiCloser

	if files.Dir != "" {
		name := files.Name
		if name == "" {
			name = "app"
		}
		combined := rotating(filepath.Join(files.Dir, name+".log"), files)
		errorsOnly := rotating(filepath.Join(files.Dir, name+"-error.log"), files)
		closers = append(closers, combined, errorsOnly)

		handlers = append(handlers,
			newHandler(combined, format, opts),
			newHandler(errorsOnly, format, &slog.HandlerOptions{Level: slog.LevelError}),
		)
	}

	// Each handler only sees records at or above its own level
	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return closers
}

func rotating(path string, files FileOutput) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    files.MaxSizeMB,
		MaxBackups: files.MaxFiles,
	}
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
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

type runIDKey struct{}

// WithRunID stores a run ID in the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run ID stored in ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// FromContext returns the default logger enriched with the run ID, if any.
//
// Usage:
//
//	logger := logging.FromContext(ctx)
//	logger.Warn("country not found", "offer_id", offer.ID)
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RunID(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	return logger
}

// WithFields returns a logger with additional structured fields.
//
// Usage:
//
//	pageLogger := logging.WithFields(ctx, "page", n, "offset", offset)
//	pageLogger.Info("page saved", "offers", len(list))
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
