package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/interfaces"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
	"github.com/m-mizutani/modkit/pkg/infra/fsutil"
)

type modFilesetUseCase struct {
	fetcher   interfaces.Fetcher
	extractor interfaces.ArchiveExtractor
	remover   interfaces.PathRemover
	launcher  interfaces.Launcher

	profile model.RuntimeProfile
	tempDir string
	lock    func(ctx context.Context, path string) (func(), error)
}

// Option is a functional option for the mod fileset use case
type Option func(*modFilesetUseCase)

// WithRuntimeProfile replaces the default BepInEx profile
func WithRuntimeProfile(profile model.RuntimeProfile) Option {
	return func(uc *modFilesetUseCase) {
		uc.profile = profile
	}
}

// WithTempDir sets where the runtime archive is downloaded before extraction
func WithTempDir(dir string) Option {
	return func(uc *modFilesetUseCase) {
		uc.tempDir = dir
	}
}

// WithoutInstallLock disables the advisory lock around the temp archive
func WithoutInstallLock() Option {
	return func(uc *modFilesetUseCase) {
		uc.lock = func(context.Context, string) (func(), error) { return func() {}, nil }
	}
}

// NewModFileset creates a new instance of ModFilesetUseCase
func NewModFileset(
	fetcher interfaces.Fetcher,
	extractor interfaces.ArchiveExtractor,
	remover interfaces.PathRemover,
	launcher interfaces.Launcher,
	opts ...Option,
) interfaces.ModFilesetUseCase {
	uc := &modFilesetUseCase{
		fetcher:   fetcher,
		extractor: extractor,
		remover:   remover,
		launcher:  launcher,
		profile:   model.DefaultRuntimeProfile(),
		tempDir:   os.TempDir(),
		lock:      fsutil.LockPath,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// InstallRuntime downloads the runtime archive into the temp directory and
// extracts it into destRoot. The temp archive is kept and overwritten by the
// next install. Nothing is cleaned up on failure.
func (uc *modFilesetUseCase) InstallRuntime(ctx context.Context, destRoot string) (string, error) {
	logger := ctxlog.From(ctx)
	archivePath := filepath.Join(uc.tempDir, uc.profile.ArchiveFile)

	logger.Info("Installing runtime",
		"runtime", uc.profile.Name,
		"url", uc.profile.ArchiveURL,
		"dest", destRoot,
	)

	unlock, err := uc.lock(ctx, archivePath)
	if err != nil {
		return "", goerr.Wrap(err, "failed to lock runtime archive", goerr.V("runtime", uc.profile.Name))
	}
	defer unlock()

	data, err := uc.fetcher.Fetch(ctx, uc.profile.ArchiveURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch runtime archive", goerr.V("runtime", uc.profile.Name))
	}

	if err := uc.fetcher.Persist(ctx, data, archivePath); err != nil {
		return "", goerr.Wrap(err, "failed to save runtime archive", goerr.V("runtime", uc.profile.Name))
	}

	result, err := uc.extractor.Extract(ctx, archivePath, destRoot, false)
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract runtime archive", goerr.V("runtime", uc.profile.Name))
	}

	logger.Info("Installed runtime",
		"runtime", uc.profile.Name,
		"dest", destRoot,
		"file_count", len(result.Files),
		"total_size_bytes", result.Size,
	)

	return fmt.Sprintf("Downloaded and extracted %s", uc.profile.Name), nil
}

// RemoveRuntimeFootprint deletes the runtime's footprint targets under
// destRoot. Absent targets are skipped; the first failing removal stops the
// operation and targets removed before it stay removed.
func (uc *modFilesetUseCase) RemoveRuntimeFootprint(ctx context.Context, destRoot string) (string, error) {
	logger := ctxlog.From(ctx)

	for _, target := range uc.profile.Footprint {
		path := filepath.Join(destRoot, target.Name)
		if err := uc.remover.RemoveTarget(ctx, path, target.Kind); err != nil {
			return "", goerr.Wrap(err, "failed to remove runtime file",
				goerr.V("runtime", uc.profile.Name),
				goerr.V("target", target.Name),
				goerr.V("kind", target.Kind))
		}
	}

	logger.Info("Removed runtime footprint", "runtime", uc.profile.Name, "dest", destRoot)
	return fmt.Sprintf("Cleaned modding files from %s", destRoot), nil
}

// FootprintStatus reports which footprint targets are present under destRoot
func (uc *modFilesetUseCase) FootprintStatus(ctx context.Context, destRoot string) (*model.FootprintStatus, error) {
	status := &model.FootprintStatus{
		Runtime: uc.profile.Name,
		Root:    destRoot,
		Targets: make([]model.FootprintTargetStatus, 0, len(uc.profile.Footprint)),
	}

	for _, target := range uc.profile.Footprint {
		path := filepath.Join(destRoot, target.Name)
		ts := model.FootprintTargetStatus{Target: target, Path: path}

		info, err := os.Lstat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, goerr.Wrap(err, "failed to stat footprint target",
				goerr.T(types.ErrTagIO), goerr.V("path", path))
		case (target.Kind == model.TargetKindDir) == info.IsDir():
			usage, err := fsutil.DiskUsage(path)
			if err != nil {
				return nil, err
			}
			ts.Present = true
			ts.FileCount = usage.Files
			ts.Size = usage.Size
		}

		status.Targets = append(status.Targets, ts)
	}

	ctxlog.From(ctx).Debug("Collected footprint status",
		"runtime", uc.profile.Name,
		"dest", destRoot,
		"installed", status.Installed(),
	)
	return status, nil
}

// Download fetches url into destPath
func (uc *modFilesetUseCase) Download(ctx context.Context, url, destPath string) error {
	if err := uc.fetcher.Download(ctx, url, destPath); err != nil {
		return goerr.Wrap(err, "failed to download file", goerr.V("url", url), goerr.V("dest", destPath))
	}
	return nil
}

// Delete removes path if it exists
func (uc *modFilesetUseCase) Delete(ctx context.Context, path string) error {
	return uc.remover.Remove(ctx, path)
}

// ExtractAndCleanup extracts archivePath into destPath, then deletes archivePath
func (uc *modFilesetUseCase) ExtractAndCleanup(ctx context.Context, archivePath, destPath string) error {
	if _, err := uc.extractor.Extract(ctx, archivePath, destPath, true); err != nil {
		return err
	}
	return nil
}

// Launch starts exePath without waiting or reporting back
func (uc *modFilesetUseCase) Launch(ctx context.Context, exePath string, args []string) {
	uc.launcher.SpawnDetached(ctx, exePath, args)
}
