package archive

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/interfaces"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

// Extractor unpacks zip archives into a destination tree
type Extractor struct {
	remover interfaces.PathRemover
}

// NewExtractor creates a new Extractor. remover deletes the source archive
// when cleanup is requested.
func NewExtractor(remover interfaces.PathRemover) *Extractor {
	return &Extractor{remover: remover}
}

// Extract unpacks every entry of archivePath under destRoot in archive order.
// The first failing entry aborts extraction; entries written before it stay on disk.
func (x *Extractor) Extract(ctx context.Context, archivePath, destRoot string, cleanupSource bool) (*model.ExtractResult, error) {
	logger := ctxlog.From(ctx)

	result, err := x.extractAll(archivePath, destRoot)
	if err != nil {
		return nil, err
	}

	logger.Debug("Extracted archive",
		"archive", archivePath,
		"dest", destRoot,
		"file_count", len(result.Files),
		"total_size_bytes", result.Size,
	)

	if cleanupSource {
		if err := x.remover.Remove(ctx, archivePath); err != nil {
			return nil, goerr.Wrap(err, "extracted archive but failed to delete it",
				goerr.V("archive", archivePath))
		}
		logger.Debug("Deleted source archive", "archive", archivePath)
	}

	return result, nil
}

func (x *Extractor) extractAll(archivePath, destRoot string) (*model.ExtractResult, error) {
	// names are mangled below, so insecure paths are not fatal
	reader, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, goerr.Wrap(err, "failed to open zip archive",
			goerr.T(types.ErrTagArchiveOpen),
			goerr.V("archive", archivePath))
	}
	defer reader.Close()

	result := &model.ExtractResult{}
	for i, file := range reader.File {
		destPath, isDir, err := x.extractEntry(file, destRoot)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to extract entry",
				goerr.T(types.ErrTagExtract),
				goerr.V("archive", archivePath),
				goerr.V("entry", file.Name),
				goerr.V("index", i))
		}

		if isDir {
			result.Dirs = append(result.Dirs, destPath)
			continue
		}
		result.Files = append(result.Files, destPath)
		result.Size += int64(file.UncompressedSize64)
	}

	return result, nil
}

// extractEntry writes a single entry. Parent directories are created per
// file because directory entries may come after the files they contain.
func (x *Extractor) extractEntry(file *zip.File, destRoot string) (string, bool, error) {
	rel := MangleName(file.Name)
	destPath := filepath.Join(destRoot, rel)

	if isDirEntry(file.Name) {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return "", true, goerr.Wrap(err, "failed to create directory", goerr.V("path", destPath))
		}
		return destPath, true, nil
	}

	if rel == "" {
		return "", false, goerr.New("file entry has no usable path")
	}

	parent := filepath.Dir(destPath)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", false, goerr.Wrap(err, "failed to create parent directory", goerr.V("path", parent))
	}

	rc, err := file.Open()
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to open entry in zip")
	}
	defer rc.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}

	if _, err := io.Copy(destFile, rc); err != nil {
		_ = destFile.Close()
		return "", false, goerr.Wrap(err, "failed to copy entry content", goerr.V("path", destPath))
	}
	if err := destFile.Close(); err != nil {
		return "", false, goerr.Wrap(err, "failed to close destination file", goerr.V("path", destPath))
	}

	return destPath, false, nil
}

func isDirEntry(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`)
}

// MangleName turns an entry name into a relative path that cannot leave the
// destination root. Parent, current, root and volume components are dropped
// and everything after a NUL byte is ignored, so "../../a/./b" becomes "a/b"
// and "C:\\x\\y" becomes "x/y". The result uses the host separator and is
// empty when nothing usable remains.
func MangleName(name string) string {
	if i := strings.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	name = strings.ReplaceAll(name, `\`, "/")

	parts := strings.Split(name, "/")
	kept := make([]string, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "", part == ".", part == "..":
			continue
		case i == 0 && len(part) == 2 && part[1] == ':':
			continue
		}
		kept = append(kept, part)
	}

	return filepath.Join(kept...)
}
