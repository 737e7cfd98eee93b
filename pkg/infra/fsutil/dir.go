package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

const (
	DirPerm  fs.FileMode = 0755
	FilePerm fs.FileMode = 0644
)

// EnsureDir creates dir and its parents. It reports whether anything was created.
func EnsureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, goerr.New("path exists but is not a directory",
				goerr.T(types.ErrTagIO), goerr.V("path", dir))
		}
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, goerr.Wrap(err, "failed to stat directory", goerr.T(types.ErrTagIO), goerr.V("path", dir))
	}

	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return false, goerr.Wrap(err, "failed to create directory", goerr.T(types.ErrTagIO), goerr.V("path", dir))
	}
	return true, nil
}

// EnsureParentDir creates the parent directory of path
func EnsureParentDir(path string) (bool, error) {
	return EnsureDir(filepath.Dir(path))
}
