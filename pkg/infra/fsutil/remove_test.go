package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
	"github.com/m-mizutani/modkit/pkg/infra/fsutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	gt.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestRemover_Remove(t *testing.T) {
	ctx := context.Background()
	r := fsutil.NewRemover()

	t.Run("removes a file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "mod.dll")
		writeFile(t, path, "payload")

		gt.NoError(t, r.Remove(ctx, path))
		gt.False(t, exists(path))
		gt.True(t, exists(dir))
	})

	t.Run("removes a directory tree", func(t *testing.T) {
		dir := t.TempDir()
		root := filepath.Join(dir, "plugins")
		writeFile(t, filepath.Join(root, "a", "b", "c.dll"), "c")
		writeFile(t, filepath.Join(root, "d.txt"), "d")

		gt.NoError(t, r.Remove(ctx, root))
		gt.False(t, exists(root))
	})

	t.Run("missing path is a no-op", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, r.Remove(ctx, filepath.Join(dir, "missing")))
		gt.NoError(t, r.Remove(ctx, filepath.Join(dir, "missing", "nested")))
	})

	t.Run("second call succeeds", func(t *testing.T) {
		for _, isDir := range []bool{true, false} {
			dir := t.TempDir()
			path := filepath.Join(dir, "target")
			if isDir {
				writeFile(t, filepath.Join(path, "inner.txt"), "x")
			} else {
				writeFile(t, path, "x")
			}

			gt.NoError(t, r.Remove(ctx, path))
			gt.False(t, exists(path))
			gt.NoError(t, r.Remove(ctx, path))
			gt.False(t, exists(path))
		}
	})

	t.Run("removes a symlink but not its target", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "real")
		writeFile(t, filepath.Join(target, "keep.txt"), "keep")
		link := filepath.Join(dir, "link")
		if err := os.Symlink(target, link); err != nil {
			t.Skip("symlinks not supported:", err)
		}

		gt.NoError(t, r.Remove(ctx, link))
		gt.False(t, exists(link))
		gt.True(t, exists(filepath.Join(target, "keep.txt")))
	})
}

func TestRemover_RemoveTarget(t *testing.T) {
	ctx := context.Background()
	r := fsutil.NewRemover()

	t.Run("directory target", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "BepInEx")
		writeFile(t, filepath.Join(path, "core", "x.dll"), "x")

		gt.NoError(t, r.RemoveTarget(ctx, path, model.TargetKindDir))
		gt.False(t, exists(path))
	})

	t.Run("file target", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "winhttp.dll")
		writeFile(t, path, "x")

		gt.NoError(t, r.RemoveTarget(ctx, path, model.TargetKindFile))
		gt.False(t, exists(path))
	})

	t.Run("absent target", func(t *testing.T) {
		dir := t.TempDir()
		gt.NoError(t, r.RemoveTarget(ctx, filepath.Join(dir, "nope"), model.TargetKindDir))
		gt.NoError(t, r.RemoveTarget(ctx, filepath.Join(dir, "nope"), model.TargetKindFile))
	})

	t.Run("directory target that is a file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "BepInEx")
		writeFile(t, path, "not a dir")

		err := r.RemoveTarget(ctx, path, model.TargetKindDir)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagIO))
		gt.True(t, exists(path))
	})

	t.Run("file target that is a directory", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "changelog.txt")
		gt.NoError(t, os.MkdirAll(path, 0755))

		err := r.RemoveTarget(ctx, path, model.TargetKindFile)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagIO))
		gt.True(t, exists(path))
	})
}

func TestRemover_Remove_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	if _, err := os.Stat("/proc"); err != nil {
		t.Skip("unix permissions required")
	}

	ctx := context.Background()
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	path := filepath.Join(locked, "file.txt")
	writeFile(t, path, "x")
	gt.NoError(t, os.Chmod(locked, 0555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	err := fsutil.NewRemover().Remove(ctx, path)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagIO))
	gt.String(t, err.Error()).Contains("failed to remove file")

	var goErr *goerr.Error
	gt.True(t, errors.As(err, &goErr))
	gt.Equal(t, goErr.Values()["path"], any(path))
}
