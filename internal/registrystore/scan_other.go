//go:build !windows

package registrystore

import "vaultkeeper/internal/regpath"

// Scan is inert on non-Windows builds: there is no registry to read, so it
// always returns an empty result and no error.
func Scan(game string, path regpath.Item, filter Filter, toggled Toggler, previous Hives) ([]Scanned, error) {
	return nil, nil
}

// Restore is inert on non-Windows builds.
func Restore(hives Hives) error {
	return nil
}

// Incorporate is inert on non-Windows builds: there is no registry to
// re-read, so it always returns an empty tree and no error.
func Incorporate(scanned []Scanned) (Hives, error) {
	return Hives{}, nil
}
