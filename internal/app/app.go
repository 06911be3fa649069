// Package app holds the start-up and conversion flow shared by the commands.
package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/config"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

// Env is a started command: configuration loaded, logging set up and a run
// id assigned.
type Env struct {
	Tool    string
	Config  *config.Config
	RunID   string
	Started time.Time

	logs io.Closer
	stop context.CancelFunc
}

// Begin starts a run for an already loaded configuration.
func Begin(tool string, cfg *config.Config) (context.Context, *Env, error) {
	logs := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, logging.FileOutput{
		Dir:       cfg.Logging.Dir,
		Name:      tool,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})

	env := &Env{
		Tool:    tool,
		Config:  cfg,
		RunID:   uuid.NewString(),
		Started: time.Now(),
		logs:    logs,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	env.stop = stop
	ctx = logging.WithRunID(ctx, env.RunID)

	logging.FromContext(ctx).Info("starting", "tool", tool, "config", cfg.String())
	return ctx, env, nil
}

// Elapsed returns the time since Begin, rounded for logging.
func (e *Env) Elapsed() time.Duration {
	return time.Since(e.Started).Round(time.Millisecond)
}

// Close releases the signal handler and flushes the log files.
func (e *Env) Close() {
	e.stop()
	if e.logs != nil {
		e.logs.Close()
	}
}

// RunFunc is the body of a command. Cleanup it defers runs before the
// process exits.
type RunFunc func(ctx context.Context, env *Env) error

// Main starts tool, runs fn and exits with status 1 if anything failed.
func Main(tool string, fn RunFunc, required ...string) {
	// Overload overwrites existing env vars
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Require(required...)
	}
	if err != nil {
		slog.Error("startup failed", "tool", tool, "error", err)
		os.Exit(1)
	}

	os.Exit(Run(tool, cfg, fn))
}

// Run executes fn for an already loaded configuration and returns the
// process exit code. The failure is logged after fn has returned, so its
// deferred cleanup has already happened.
func Run(tool string, cfg *config.Config, fn RunFunc) int {
	ctx, env, err := Begin(tool, cfg)
	if err != nil {
		slog.Error("startup failed", "tool", tool, "error", err)
		return 1
	}
	defer env.Close()

	if err := fn(ctx, env); err != nil {
		logging.FromContext(ctx).Error(tool+" failed", "error", err, "elapsed", env.Elapsed())
		return 1
	}
	return 0
}
