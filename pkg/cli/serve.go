package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/cli/config"
	controller "github.com/m-mizutani/modkit/pkg/controller/http"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		fetchCfg   config.Fetch
		runtimeCfg config.Runtime
	)

	flags := append(serverCfg.Flags(), fetchCfg.Flags()...)
	flags = append(flags, runtimeCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server for the launcher frontend",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting modkit server",
				slog.String("addr", serverCfg.Addr),
			)

			uc, closer, err := newModFileset(ctx, &fetchCfg, &runtimeCfg)
			if err != nil {
				return err
			}
			defer closer()

			server, err := controller.NewServer(
				ctx,
				uc,
				controller.WithAddr(serverCfg.Addr),
				controller.WithAllowedHosts(serverCfg.AllowedHosts...),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, egCtx := errgroup.WithContext(sigCtx)

			eg.Go(func() error {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "HTTP server error", goerr.V("addr", serverCfg.Addr))
				}
				return nil
			})

			eg.Go(func() error {
				<-egCtx.Done()
				logger.Info("Shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
