package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/modkit/pkg/cli/config"
	"github.com/m-mizutani/modkit/pkg/domain/interfaces"
	"github.com/m-mizutani/modkit/pkg/infra/archive"
	"github.com/m-mizutani/modkit/pkg/infra/fsutil"
	"github.com/m-mizutani/modkit/pkg/infra/launcher"
	"github.com/m-mizutani/modkit/pkg/usecase"
)

// newModFileset wires infrastructure into the mod fileset use case. The
// returned function releases network clients.
func newModFileset(ctx context.Context, fetchCfg *config.Fetch, runtimeCfg *config.Runtime) (interfaces.ModFilesetUseCase, func(), error) {
	profile, err := runtimeCfg.Load()
	if err != nil {
		return nil, nil, err
	}

	ctxlog.From(ctx).Debug("Configuration loaded",
		"fetch", fetchCfg,
		"runtime", runtimeCfg,
		"profile", profile.Name,
	)

	client, closer := fetchCfg.Configure()
	remover := fsutil.NewRemover()

	opts := []usecase.Option{
		usecase.WithRuntimeProfile(profile),
	}
	if runtimeCfg.TempDir != "" {
		opts = append(opts, usecase.WithTempDir(runtimeCfg.TempDir))
	}

	uc := usecase.NewModFileset(
		client,
		archive.NewExtractor(remover),
		remover,
		launcher.New(),
		opts...,
	)
	return uc, closer, nil
}
