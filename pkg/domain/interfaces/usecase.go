package interfaces

import (
	"context"

	"github.com/m-mizutani/modkit/pkg/domain/model"
)

// ModFilesetUseCase defines the operations exposed to the launcher frontend
type ModFilesetUseCase interface {
	// InstallRuntime downloads the configured runtime archive and extracts it into destRoot
	InstallRuntime(ctx context.Context, destRoot string) (string, error)

	// RemoveRuntimeFootprint deletes every footprint target of the runtime under destRoot
	RemoveRuntimeFootprint(ctx context.Context, destRoot string) (string, error)

	// FootprintStatus reports which footprint targets exist under destRoot
	FootprintStatus(ctx context.Context, destRoot string) (*model.FootprintStatus, error)

	// Download fetches url into destPath
	Download(ctx context.Context, url, destPath string) error

	// Delete removes a file or directory tree if it exists
	Delete(ctx context.Context, path string) error

	// ExtractAndCleanup extracts archivePath into destPath and deletes the archive
	ExtractAndCleanup(ctx context.Context, archivePath, destPath string) error

	// Launch starts exePath with args if it exists. Nothing is reported back.
	Launch(ctx context.Context, exePath string, args []string)
}
