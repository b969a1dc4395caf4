package config

import "vaultkeeper/internal/manifest"

// CustomGameKind distinguishes a user-defined game entry from an alias
// that just redirects to an existing manifest entry under a new name.
type CustomGameKind int

const (
	CustomGameKindGame CustomGameKind = iota
	CustomGameKindAlias
)

// CustomGame is a user-authored addition or override to the manifest:
// either a brand new game (with its own file/registry globs) or an alias
// pointing at an existing game under a different display name.
type CustomGame struct {
	Name        string   `yaml:"name" mapstructure:"name"`
	Ignore      bool     `yaml:"ignore,omitempty" mapstructure:"ignore"`
	Alias       string   `yaml:"alias,omitempty" mapstructure:"alias"`
	PreferAlias bool     `yaml:"preferAlias,omitempty" mapstructure:"preferAlias"`
	Files       []string `yaml:"files,omitempty" mapstructure:"files"`
	Registry    []string `yaml:"registry,omitempty" mapstructure:"registry"`
}

// Kind reports whether this entry is a new game or an alias.
func (c CustomGame) Kind() CustomGameKind {
	if c.Alias != "" {
		return CustomGameKindAlias
	}
	return CustomGameKindGame
}

// ToManifestGame converts a non-alias CustomGame into a manifest.Game with
// unconstrained (always-applicable) file and registry entries, so it can
// be merged into the working manifest just like a real database entry.
func (c CustomGame) ToManifestGame() manifest.Game {
	game := manifest.Game{
		Files:    make(map[string]manifest.FileEntry, len(c.Files)),
		Registry: make(map[string]manifest.RegistryEntry, len(c.Registry)),
	}
	for _, f := range c.Files {
		game.Files[f] = manifest.FileEntry{}
	}
	for _, r := range c.Registry {
		game.Registry[r] = manifest.RegistryEntry{}
	}
	return game
}
