package config

import (
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"vaultkeeper/internal/regpath"
	"vaultkeeper/internal/strictpath"
)

// BackupFilter excludes paths and registry keys from every game's backup,
// regardless of per-game toggles.
type BackupFilter struct {
	ExcludeStoreScreenshots bool     `yaml:"excludeStoreScreenshots" mapstructure:"excludeStoreScreenshots"`
	IgnoredPaths            []string `yaml:"ignoredPaths" mapstructure:"ignoredPaths"`
	IgnoredRegistry         []string `yaml:"ignoredRegistry" mapstructure:"ignoredRegistry"`

	globsOnce sync.Once
	globs     []string
}

func (f *BackupFilter) buildGlobs() {
	f.globsOnce.Do(func() {
		for _, raw := range f.IgnoredPaths {
			normalized := strictpath.New(raw).Render()
			f.globs = append(f.globs, normalized, normalized+"/**")
		}
	})
}

// IsPathIgnored reports whether path matches one of the filter's ignored
// path globs (case-insensitive, as the original treats path casing).
func (f *BackupFilter) IsPathIgnored(path strictpath.Path) bool {
	if len(f.IgnoredPaths) == 0 {
		return false
	}
	f.buildGlobs()

	rendered := strings.ToLower(path.Render())
	for _, pattern := range f.globs {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), rendered); ok {
			return true
		}
	}
	return false
}

// IsRegistryIgnored reports whether item is excluded, either because one
// of the ignored entries is a prefix of it or an exact (case-insensitive)
// match.
func (f *BackupFilter) IsRegistryIgnored(item regpath.Item) bool {
	for _, raw := range f.IgnoredRegistry {
		candidate := regpath.NewItem(raw)
		if candidate.IsPrefixOf(item) || candidate.Equal(item) {
			return true
		}
	}
	return false
}
