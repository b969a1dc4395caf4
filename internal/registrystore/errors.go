package registrystore

import "github.com/pkg/errors"

// ErrUnrecognizedHive is returned when a registry path's leading component
// doesn't match one of the known hive names or aliases.
var ErrUnrecognizedHive = errors.New("registrystore: unrecognized hive")

// ErrRestoreIncomplete is returned from Restore when one or more keys or
// values could not be written; the caller should treat this as a partial
// success and report which game it affected, not abort the whole run.
var ErrRestoreIncomplete = errors.New("registrystore: one or more keys/values failed to restore")
