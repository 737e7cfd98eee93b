package interfaces

import (
	"context"

	"github.com/m-mizutani/modkit/pkg/domain/model"
)

// Fetcher retrieves remote resources. Every method treats a non-2xx
// response as an error.
type Fetcher interface {
	// Fetch returns the full response body of url
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Persist writes data to destPath, creating missing parent directories
	// and replacing any existing file
	Persist(ctx context.Context, data []byte, destPath string) error

	// Download fetches url and persists the body to destPath
	Download(ctx context.Context, url, destPath string) error
}

// ArchiveExtractor unpacks zip archives
type ArchiveExtractor interface {
	// Extract unpacks archivePath under destRoot. When cleanupSource is true
	// the archive is deleted after every entry was written.
	Extract(ctx context.Context, archivePath, destRoot string, cleanupSource bool) (*model.ExtractResult, error)
}

// PathRemover deletes files and directory trees. Absent paths are not an error.
type PathRemover interface {
	Remove(ctx context.Context, path string) error
	RemoveTarget(ctx context.Context, path string, kind model.TargetKind) error
}

// Launcher starts external programs without reporting anything back
type Launcher interface {
	SpawnDetached(ctx context.Context, exePath string, args []string)
}
