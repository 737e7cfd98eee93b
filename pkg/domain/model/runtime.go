package model

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/modkit/pkg/domain/types"
)

// TargetKind tells the remover how a footprint target must be deleted
type TargetKind string

const (
	TargetKindDir  TargetKind = "dir"
	TargetKindFile TargetKind = "file"
)

// FootprintTarget is one file or directory a runtime places under its install root
type FootprintTarget struct {
	Name string     `toml:"name" json:"name"`
	Kind TargetKind `toml:"kind" json:"kind"`
}

// RuntimeProfile describes a third-party runtime that can be installed into a game directory
type RuntimeProfile struct {
	Name        string            `toml:"name" json:"name"`
	ArchiveURL  string            `toml:"archive_url" json:"archive_url"`
	ArchiveFile string            `toml:"archive_file" json:"archive_file"`
	Footprint   []FootprintTarget `toml:"footprint" json:"footprint"`
}

// DefaultRuntimeProfile returns the pinned BepInEx release for 64-bit Windows games
func DefaultRuntimeProfile() RuntimeProfile {
	return RuntimeProfile{
		Name:        "BepInEx",
		ArchiveURL:  "https://github.com/BepInEx/BepInEx/releases/download/v5.4.23.3/BepInEx_win_x64_5.4.23.3.zip",
		ArchiveFile: "bepinex.zip",
		Footprint: []FootprintTarget{
			{Name: "BepInEx", Kind: TargetKindDir},
			{Name: ".doorstop_version", Kind: TargetKindFile},
			{Name: "changelog.txt", Kind: TargetKindFile},
			{Name: "doorstop_config.ini", Kind: TargetKindFile},
			{Name: "winhttp.dll", Kind: TargetKindFile},
			{Name: "winhttp.disabled", Kind: TargetKindFile},
		},
	}
}

// Validate checks that the profile can be used for install and removal
func (p RuntimeProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return goerr.New("runtime profile name is empty", goerr.T(types.ErrTagInvalidConfig))
	}
	if strings.TrimSpace(p.ArchiveURL) == "" {
		return goerr.New("runtime profile archive_url is empty",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("profile", p.Name))
	}
	if p.ArchiveFile == "" || p.ArchiveFile != filepath.Base(p.ArchiveFile) || p.ArchiveFile == ".." {
		return goerr.New("runtime profile archive_file must be a plain file name",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("profile", p.Name),
			goerr.V("archive_file", p.ArchiveFile))
	}

	for _, target := range p.Footprint {
		if err := target.Validate(); err != nil {
			return goerr.Wrap(err, "invalid footprint target", goerr.V("profile", p.Name))
		}
	}
	return nil
}

// Validate rejects targets that would resolve outside the install root
func (t FootprintTarget) Validate() error {
	clean := filepath.Clean(t.Name)
	if t.Name == "" || clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return goerr.New("footprint target must be relative to the install root",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("target", t.Name))
	}

	switch t.Kind {
	case TargetKindDir, TargetKindFile:
		return nil
	default:
		return goerr.New("unknown footprint target kind",
			goerr.T(types.ErrTagInvalidConfig),
			goerr.V("target", t.Name),
			goerr.V("kind", t.Kind))
	}
}

// FootprintTargetStatus is the observed state of one footprint target
type FootprintTargetStatus struct {
	Target    FootprintTarget `json:"target"`
	Path      string          `json:"path"`
	Present   bool            `json:"present"`
	FileCount int             `json:"file_count"`
	Size      int64           `json:"size"`
}

// FootprintStatus summarizes which parts of a runtime are present under a root
type FootprintStatus struct {
	Runtime string                  `json:"runtime"`
	Root    string                  `json:"root"`
	Targets []FootprintTargetStatus `json:"targets"`
}

// Installed reports whether any footprint target is present
func (s *FootprintStatus) Installed() bool {
	for _, t := range s.Targets {
		if t.Present {
			return true
		}
	}
	return false
}
