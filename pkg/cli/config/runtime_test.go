package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/pelletier/go-toml/v2"

	"github.com/m-mizutani/modkit/pkg/cli/config"
	"github.com/m-mizutani/modkit/pkg/domain/model"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runtime.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRuntime_Load_Default(t *testing.T) {
	cfg := &config.Runtime{}
	profile, err := cfg.Load()
	gt.NoError(t, err)
	gt.Equal(t, profile, model.DefaultRuntimeProfile())
}

func TestRuntime_Load_File(t *testing.T) {
	path := writeProfile(t, `
name = "MelonLoader"
archive_url = "https://github.com/LavaGang/MelonLoader/releases/download/v0.6.6/MelonLoader.x64.zip"
archive_file = "melonloader.zip"

[[footprint]]
name = "MelonLoader"
kind = "dir"

[[footprint]]
name = "version.dll"
kind = "file"
`)

	cfg := &config.Runtime{ProfilePath: path}
	profile, err := cfg.Load()
	gt.NoError(t, err)
	gt.Equal(t, profile.Name, "MelonLoader")
	gt.Equal(t, profile.ArchiveFile, "melonloader.zip")
	gt.Equal(t, profile.Footprint, []model.FootprintTarget{
		{Name: "MelonLoader", Kind: model.TargetKindDir},
		{Name: "version.dll", Kind: model.TargetKindFile},
	})
}

func TestRuntime_Load_RoundTrip(t *testing.T) {
	raw, err := toml.Marshal(model.DefaultRuntimeProfile())
	gt.NoError(t, err)

	cfg := &config.Runtime{ProfilePath: writeProfile(t, string(raw))}
	profile, err := cfg.Load()
	gt.NoError(t, err)
	gt.Equal(t, profile, model.DefaultRuntimeProfile())
}

func TestRuntime_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "broken toml", content: `name = "x`},
		{name: "missing url", content: "name = \"x\"\narchive_file = \"x.zip\"\n"},
		{name: "escaping target", content: `
name = "x"
archive_url = "https://example.com/x.zip"
archive_file = "x.zip"

[[footprint]]
name = "../../Windows"
kind = "dir"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Runtime{ProfilePath: writeProfile(t, tt.content)}
			_, err := cfg.Load()
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		cfg := &config.Runtime{ProfilePath: filepath.Join(t.TempDir(), "none.toml")}
		_, err := cfg.Load()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
	})
}
