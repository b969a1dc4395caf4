// Package manifest models the game database: which files, install-dir
// names, and registry keys belong to a given game, and under what
// constraints (OS, store) each entry applies.
package manifest

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// OS identifies a target platform for a GameFileConstraint/GameRegistryConstraint.
type OS string

const (
	OSWindows OS = "windows"
	OSLinux   OS = "linux"
	OSMac     OS = "mac"
	OSOther   OS = "other"
)

// Host is the OS this process is running on, in manifest terms.
func Host() OS {
	switch hostGOOS {
	case "windows":
		return OSWindows
	case "linux":
		return OSLinux
	case "darwin":
		return OSMac
	default:
		return OSOther
	}
}

// CaseSensitive reports whether this OS's filesystem is normally case
// sensitive (Linux) or not (Windows, Mac).
func (o OS) CaseSensitive() bool {
	return o == OSLinux || o == OSOther
}

// Store identifies a game storefront/launcher, used to scope entries that
// only apply when a game was obtained through a particular store.
type Store string

const (
	StoreEA        Store = "ea"
	StoreEpic      Store = "epic"
	StoreGOG       Store = "gog"
	StoreGOGGalaxy Store = "gogGalaxy"
	StoreHeroic    Store = "heroic"
	StoreLutris    Store = "lutris"
	StoreMicrosoft Store = "microsoft"
	StoreOrigin    Store = "origin"
	StorePrime     Store = "prime"
	StoreSteam     Store = "steam"
	StoreUplay     Store = "uplay"
	StoreOtherHome Store = "otherHome"
	StoreOtherWine Store = "otherWine"
	StoreOther     Store = "other"
)

// Tag classifies what kind of data a file entry represents.
type Tag string

const (
	TagSave   Tag = "save"
	TagConfig Tag = "config"
	TagOther  Tag = "other"
)

// FileConstraint scopes a file entry to a specific OS and/or store; an
// unset field matches any value. An entry may list several constraints,
// of which any one matching is sufficient (OR semantics).
type FileConstraint struct {
	OS    OS    `yaml:"os,omitempty"`
	Store Store `yaml:"store,omitempty"`
}

// Matches reports whether this constraint allows the given host/store pair.
func (c FileConstraint) Matches(host OS, store Store) bool {
	if c.OS != "" && c.OS != host {
		return false
	}
	if c.Store != "" && c.Store != store {
		return false
	}
	return true
}

// FileEntry is one path-template entry under a game's "files" map.
type FileEntry struct {
	Tags []Tag            `yaml:"tags,omitempty"`
	When []FileConstraint `yaml:"when,omitempty"`
}

// Allowed reports whether this entry applies given the host OS and store,
// per the original's "no when clauses means always" rule.
func (e FileEntry) Allowed(host OS, store Store) bool {
	if len(e.When) == 0 {
		return true
	}
	for _, c := range e.When {
		if c.Matches(host, store) {
			return true
		}
	}
	return false
}

// RegistryConstraint scopes a registry entry to a specific store.
type RegistryConstraint struct {
	Store Store `yaml:"store,omitempty"`
}

// RegistryEntry is one registry-path-template entry under a game's
// "registry" map.
type RegistryEntry struct {
	Tags []Tag                `yaml:"tags,omitempty"`
	When []RegistryConstraint `yaml:"when,omitempty"`
}

// Allowed reports whether this entry applies for the given store.
func (e RegistryEntry) Allowed(store Store) bool {
	if len(e.When) == 0 {
		return true
	}
	for _, c := range e.When {
		if c.Store == "" || c.Store == store {
			return true
		}
	}
	return false
}

// InstallDirEntry is a candidate install-directory basename for a game;
// it carries no data of its own, only presence under the map key.
type InstallDirEntry struct{}

// Steam carries the game's Steam app id, when known.
type Steam struct {
	ID uint32 `yaml:"id,omitempty"`
}

// GOG carries the game's GOG product id, when known.
type GOG struct {
	ID uint64 `yaml:"id,omitempty"`
}

// ExtraIDs carries alternate ids seen across various stores/launchers
// (Flatpak app id, extra Steam/GOG ids for franchise bundles, etc).
type ExtraIDs struct {
	Flatpak   string   `yaml:"flatpak,omitempty"`
	GOGExtra  []uint64 `yaml:"gogExtra,omitempty"`
	SteamExtra []uint32 `yaml:"steamExtra,omitempty"`
}

// Game is one entry in the manifest: everything known about where a
// single game stores its saves, configs, and registry data.
type Game struct {
	Files      map[string]FileEntry      `yaml:"files,omitempty"`
	InstallDir map[string]InstallDirEntry `yaml:"installDir,omitempty"`
	Registry   map[string]RegistryEntry   `yaml:"registry,omitempty"`
	Steam      *Steam                     `yaml:"steam,omitempty"`
	GOG        *GOG                       `yaml:"gog,omitempty"`
	ID         *ExtraIDs                  `yaml:"id,omitempty"`
}

// Manifest maps game name to its Game entry.
type Manifest struct {
	Games map[string]Game `yaml:",inline"`
}

// Load reads a manifest YAML file (the primary database, or a secondary
// custom-games overlay in the same shape) from disk.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	games := map[string]Game{}
	if err := yaml.Unmarshal(data, &games); err != nil {
		return Manifest{}, err
	}
	return Manifest{Games: games}, nil
}

// Names returns the game names in sorted order, for deterministic iteration.
func (m Manifest) Names() []string {
	names := make([]string, 0, len(m.Games))
	for name := range m.Games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge overlays other's entries on top of m, with other's entries for a
// given game name taking priority (used to layer a custom-games file over
// the primary manifest).
func (m Manifest) Merge(other Manifest) Manifest {
	out := Manifest{Games: make(map[string]Game, len(m.Games)+len(other.Games))}
	for name, game := range m.Games {
		out.Games[name] = game
	}
	for name, game := range other.Games {
		out.Games[name] = game
	}
	return out
}

var hostGOOS = currentGOOS()
