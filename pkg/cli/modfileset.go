package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/modkit/pkg/cli/config"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

func destFlag(dest *string, usage string) cli.Flag {
	return &cli.StringFlag{
		Name:        "dest",
		Aliases:     []string{"d"},
		Usage:       usage,
		Required:    true,
		Destination: dest,
	}
}

func cmdInstall() *cli.Command {
	var (
		fetchCfg   config.Fetch
		runtimeCfg config.Runtime
		dest       string
	)

	flags := []cli.Flag{destFlag(&dest, "Game directory the runtime is extracted into")}
	flags = append(flags, fetchCfg.Flags()...)
	flags = append(flags, runtimeCfg.Flags()...)

	return &cli.Command{
		Name:  "install",
		Usage: "Download the mod runtime and extract it into the game directory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &fetchCfg, &runtimeCfg)
			if err != nil {
				return err
			}
			defer closer()

			msg, err := uc.InstallRuntime(ctx, dest)
			if err != nil {
				return err
			}
			printSuccess(c.Root().Writer, "%s", msg)
			return nil
		},
	}
}

func cmdRemove() *cli.Command {
	var (
		runtimeCfg config.Runtime
		dest       string
	)

	return &cli.Command{
		Name:  "remove",
		Usage: "Remove the mod runtime files from the game directory",
		Flags: append([]cli.Flag{destFlag(&dest, "Game directory to clean")}, runtimeCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &config.Fetch{}, &runtimeCfg)
			if err != nil {
				return err
			}
			defer closer()

			msg, err := uc.RemoveRuntimeFootprint(ctx, dest)
			if err != nil {
				return err
			}
			printSuccess(c.Root().Writer, "%s", msg)
			return nil
		},
	}
}

func cmdStatus() *cli.Command {
	var (
		runtimeCfg config.Runtime
		dest       string
	)

	return &cli.Command{
		Name:  "status",
		Usage: "Show which mod runtime files exist in the game directory",
		Flags: append([]cli.Flag{destFlag(&dest, "Game directory to inspect")}, runtimeCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &config.Fetch{}, &runtimeCfg)
			if err != nil {
				return err
			}
			defer closer()

			status, err := uc.FootprintStatus(ctx, dest)
			if err != nil {
				return err
			}
			printStatus(c.Root().Writer, status)
			return nil
		},
	}
}

func printStatus(w io.Writer, status *model.FootprintStatus) {
	state := color.New(color.FgYellow).Sprint("not installed")
	if status.Installed() {
		state = color.New(color.FgGreen).Sprint("installed")
	}
	_, _ = fmt.Fprintf(w, "%s in %s: %s\n", status.Runtime, status.Root, state)

	for _, ts := range status.Targets {
		mark := "-"
		if ts.Present {
			mark = "+"
		}
		_, _ = fmt.Fprintf(w, "  %s %-20s %-4s files=%d size=%d\n",
			mark, ts.Target.Name, ts.Target.Kind, ts.FileCount, ts.Size)
	}
}

func cmdExtract() *cli.Command {
	var archivePath, dest string

	return &cli.Command{
		Name:  "extract",
		Usage: "Extract a zip archive into a directory and delete the archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "archive",
				Aliases:     []string{"a"},
				Usage:       "Zip archive to extract",
				Required:    true,
				Destination: &archivePath,
			},
			destFlag(&dest, "Directory to extract into"),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &config.Fetch{}, &config.Runtime{})
			if err != nil {
				return err
			}
			defer closer()

			if err := uc.ExtractAndCleanup(ctx, archivePath, dest); err != nil {
				return err
			}
			printSuccess(c.Root().Writer, "Extracted %s into %s", archivePath, dest)
			return nil
		},
	}
}

func cmdDownload() *cli.Command {
	var (
		fetchCfg config.Fetch
		url      string
		dest     string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "url",
			Aliases:     []string{"u"},
			Usage:       "URL to download (http, https or gs)",
			Required:    true,
			Destination: &url,
		},
		destFlag(&dest, "File path to write"),
	}
	flags = append(flags, fetchCfg.Flags()...)

	return &cli.Command{
		Name:  "download",
		Usage: "Download a file, creating parent directories",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &fetchCfg, &config.Runtime{})
			if err != nil {
				return err
			}
			defer closer()

			if err := uc.Download(ctx, url, dest); err != nil {
				return err
			}
			printSuccess(c.Root().Writer, "Downloaded %s", dest)
			return nil
		},
	}
}

func cmdDelete() *cli.Command {
	var path string

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a file or directory tree if it exists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "path",
				Aliases:     []string{"p"},
				Usage:       "File or directory to delete",
				Required:    true,
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &config.Fetch{}, &config.Runtime{})
			if err != nil {
				return err
			}
			defer closer()

			if err := uc.Delete(ctx, path); err != nil {
				return err
			}
			printSuccess(c.Root().Writer, "Deleted %s", path)
			return nil
		},
	}
}

func cmdLaunch() *cli.Command {
	var exePath string

	return &cli.Command{
		Name:      "launch",
		Usage:     "Start an executable without waiting for it",
		ArgsUsage: "[-- args...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "exe",
				Aliases:     []string{"e"},
				Usage:       "Executable to start; nothing happens if it does not exist",
				Required:    true,
				Destination: &exePath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := newModFileset(ctx, &config.Fetch{}, &config.Runtime{})
			if err != nil {
				return err
			}
			defer closer()

			uc.Launch(ctx, exePath, c.Args().Slice())
			return nil
		},
	}
}
