package launcher_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/modkit/pkg/domain/interfaces"
	"github.com/m-mizutani/modkit/pkg/infra/launcher"
)

var _ interfaces.Launcher = (*launcher.Launcher)(nil)

func TestLauncher_SpawnDetached(t *testing.T) {
	ctx := context.Background()

	t.Run("missing executable spawns nothing", func(t *testing.T) {
		var started []*exec.Cmd
		l := launcher.New(launcher.WithStarter(func(_ context.Context, cmd *exec.Cmd) error {
			started = append(started, cmd)
			return nil
		}))

		l.SpawnDetached(ctx, filepath.Join(t.TempDir(), "Game.exe"), []string{"--doorstop-enable", "true"})
		gt.A(t, started).Length(0)
	})

	t.Run("existing executable is started with args", func(t *testing.T) {
		exe := filepath.Join(t.TempDir(), "Game.exe")
		gt.NoError(t, os.WriteFile(exe, []byte("MZ"), 0755))

		var started []*exec.Cmd
		l := launcher.New(launcher.WithStarter(func(_ context.Context, cmd *exec.Cmd) error {
			started = append(started, cmd)
			return nil
		}))

		l.SpawnDetached(ctx, exe, []string{"-screen-fullscreen", "0"})
		gt.A(t, started).Length(1)
		gt.Equal(t, started[0].Path, exe)
		gt.Equal(t, started[0].Args, []string{exe, "-screen-fullscreen", "0"})
	})

	t.Run("start failure is swallowed", func(t *testing.T) {
		exe := filepath.Join(t.TempDir(), "Game.exe")
		gt.NoError(t, os.WriteFile(exe, []byte("MZ"), 0755))

		calls := 0
		l := launcher.New(launcher.WithStarter(func(_ context.Context, cmd *exec.Cmd) error {
			calls++
			return errors.New("exec format error")
		}))

		l.SpawnDetached(ctx, exe, nil)
		gt.Equal(t, calls, 1)
	})

	t.Run("default starter ignores non-executable file", func(t *testing.T) {
		// a plain data file cannot be executed; the call must still return quietly
		exe := filepath.Join(t.TempDir(), "notes.txt")
		gt.NoError(t, os.WriteFile(exe, []byte("not a program"), 0644))

		launcher.New().SpawnDetached(ctx, exe, nil)
	})
}
