package registrystore

import (
	"vaultkeeper/internal/changekind"
	"vaultkeeper/internal/regpath"
)

// ScannedValue is one named value found live under a scanned key, along
// with its ignored flag and its change relative to the previous backup.
type ScannedValue struct {
	Ignored bool
	Change  changekind.ScanChange
}

// ScannedValues maps value name to ScannedValue.
type ScannedValues map[string]ScannedValue

// Scanned is one live registry key discovered during a scan: its path,
// whether the key itself is toggled off, its change relative to the
// previous backup, and the per-value breakdown.
type Scanned struct {
	Path    regpath.Item
	Ignored bool
	Change  changekind.ScanChange
	Values  ScannedValues
}

// Filter decides whether a registry path (optionally a specific value
// under it) is excluded from backup. Implemented by internal/config so
// that this package never needs to import config.
type Filter interface {
	IsRegistryIgnored(path regpath.Item) bool
}

// Toggler reports the user's per-game, per-path (and per-value) enable/
// disable overrides. Implemented by internal/config.
type Toggler interface {
	IsIgnored(game string, path regpath.Item, value *string) bool
}
