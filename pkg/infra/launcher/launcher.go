package launcher

import (
	"context"
	"os"
	"os/exec"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/modkit/pkg/utils/async"
)

// Starter starts a prepared command without waiting for it
type Starter func(ctx context.Context, cmd *exec.Cmd) error

// Launcher spawns game executables and forgets about them
type Launcher struct {
	start Starter
}

// Option is a functional option for Launcher configuration
type Option func(*Launcher)

// WithStarter replaces how commands are started
func WithStarter(start Starter) Option {
	return func(l *Launcher) {
		l.start = start
	}
}

// New creates a new Launcher
func New(opts ...Option) *Launcher {
	l := &Launcher{
		start: startAndReap,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SpawnDetached starts exePath with args. Nothing happens if exePath does
// not exist, and a failure to start is not reported to the caller.
func (l *Launcher) SpawnDetached(ctx context.Context, exePath string, args []string) {
	logger := ctxlog.From(ctx)

	if _, err := os.Stat(exePath); err != nil {
		logger.Debug("Executable not found, skipping launch", "path", exePath)
		return
	}

	// not bound to ctx: the game outlives the request that started it
	cmd := exec.Command(exePath, args...)
	if err := l.start(ctx, cmd); err != nil {
		logger.Debug("Failed to start executable", "path", exePath, "error", err)
		return
	}
	logger.Info("Launched executable", "path", exePath, "args", args)
}

// startAndReap starts cmd and waits for it on a background goroutine so the
// child does not linger as a zombie after it exits
func startAndReap(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	async.Dispatch(ctx, "wait "+cmd.Path, func(ctx context.Context) error {
		// exit status of a detached game is not interesting
		_ = cmd.Wait()
		return nil
	})
	return nil
}
