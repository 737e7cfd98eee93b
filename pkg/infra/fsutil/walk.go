package fsutil

import (
	"os"

	"github.com/karrick/godirwalk"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

// Usage is the number of regular files below a path and their total size
type Usage struct {
	Files int
	Size  int64
}

// DiskUsage walks root and sums up regular files. Symlinks are not followed.
// root may be a single file.
func DiskUsage(root string) (Usage, error) {
	var usage Usage

	info, err := os.Lstat(root)
	if err != nil {
		return usage, goerr.Wrap(err, "failed to stat path", goerr.T(types.ErrTagIO), goerr.V("path", root))
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			usage.Files = 1
			usage.Size = info.Size()
		}
		return usage, nil
	}

	err = godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsRegular() {
				return nil
			}
			fi, err := os.Lstat(path)
			if err != nil {
				return err
			}
			usage.Files++
			usage.Size += fi.Size()
			return nil
		},
	})
	if err != nil {
		return usage, goerr.Wrap(err, "failed to walk directory", goerr.T(types.ErrTagIO), goerr.V("path", root))
	}

	return usage, nil
}
