package fsutil

import (
	"context"
	"time"

	"github.com/gofrs/flock"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

const lockRetryDelay = 50 * time.Millisecond

// LockPath takes an advisory lock on "<path>.lock" and blocks until it is
// held or ctx is done. The returned function releases the lock.
func LockPath(ctx context.Context, path string) (func(), error) {
	lockFilePath := path + ".lock"
	if _, err := EnsureParentDir(lockFilePath); err != nil {
		return nil, err
	}

	fileLock := flock.New(lockFilePath)
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		_ = fileLock.Close()
		return nil, goerr.Wrap(err, "failed to acquire file lock",
			goerr.T(types.ErrTagIO), goerr.V("path", lockFilePath))
	}
	if !locked {
		_ = fileLock.Close()
		return nil, goerr.New("file lock was not acquired",
			goerr.T(types.ErrTagIO), goerr.V("path", lockFilePath))
	}
	ctxlog.From(ctx).Debug("Acquired file lock", "path", lockFilePath)

	return func() {
		if err := fileLock.Unlock(); err != nil {
			ctxlog.From(ctx).Warn("Failed to release file lock", "path", lockFilePath, "error", err)
		}
	}, nil
}
