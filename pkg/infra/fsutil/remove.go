package fsutil

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

// Remover deletes paths from the local filesystem
type Remover struct{}

// NewRemover creates a new Remover
func NewRemover() *Remover {
	return &Remover{}
}

// Remove deletes path. A directory is removed with all of its contents, any
// other kind of entry is removed on its own. A missing path is not an error.
func (r *Remover) Remove(ctx context.Context, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to stat path", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}

	if info.IsDir() {
		return removeDir(ctx, path)
	}
	return removeFile(ctx, path)
}

// RemoveTarget deletes path the way kind says it must be deleted. A present
// entry of the other kind is reported as an error and left in place.
func (r *Remover) RemoveTarget(ctx context.Context, path string, kind model.TargetKind) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to stat path", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}

	switch kind {
	case model.TargetKindDir:
		if !info.IsDir() {
			return goerr.New("target is not a directory",
				goerr.T(types.ErrTagIO), goerr.V("path", path), goerr.V("kind", kind))
		}
		return removeDir(ctx, path)

	case model.TargetKindFile:
		if info.IsDir() {
			return goerr.New("target is a directory",
				goerr.T(types.ErrTagIO), goerr.V("path", path), goerr.V("kind", kind))
		}
		return removeFile(ctx, path)

	default:
		return goerr.New("unknown target kind",
			goerr.T(types.ErrTagIO), goerr.V("path", path), goerr.V("kind", kind))
	}
}

func removeDir(ctx context.Context, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return goerr.Wrap(err, "failed to remove directory", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}
	ctxlog.From(ctx).Debug("Removed directory", "path", path)
	return nil
}

func removeFile(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove file", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}
	ctxlog.From(ctx).Debug("Removed file", "path", path)
	return nil
}
