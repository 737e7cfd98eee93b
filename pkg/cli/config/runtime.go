package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Runtime holds the runtime profile source and the download area
type Runtime struct {
	ProfilePath string
	TempDir     string
}

// Flags returns CLI flags for runtime configuration
func (c *Runtime) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "runtime-profile",
			Usage:       "TOML file describing the runtime to install (default: BepInEx 5.4.23.3 win x64)",
			Destination: &c.ProfilePath,
			Sources:     cli.EnvVars("MODKIT_RUNTIME_PROFILE"),
		},
		&cli.StringFlag{
			Name:        "temp-dir",
			Usage:       "Directory the runtime archive is downloaded to (default: system temp dir)",
			Destination: &c.TempDir,
			Sources:     cli.EnvVars("MODKIT_TEMP_DIR"),
		},
	}
}

// Load returns the configured profile, or the built-in one when no file is given
func (c *Runtime) Load() (model.RuntimeProfile, error) {
	if c.ProfilePath == "" {
		return model.DefaultRuntimeProfile(), nil
	}

	raw, err := os.ReadFile(c.ProfilePath)
	if err != nil {
		return model.RuntimeProfile{}, goerr.Wrap(err, "failed to read runtime profile",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", c.ProfilePath))
	}

	var profile model.RuntimeProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return model.RuntimeProfile{}, goerr.Wrap(err, "failed to parse runtime profile",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("path", c.ProfilePath))
	}

	if err := profile.Validate(); err != nil {
		return model.RuntimeProfile{}, goerr.Wrap(err, "invalid runtime profile", goerr.V("path", c.ProfilePath))
	}
	return profile, nil
}
