// Package changekind holds the ScanChange enum shared by scanner and
// registrystore, so neither package needs to import the other.
package changekind

import "strings"

// ScanChange classifies a scanned file or registry value against the
// backup it's being compared to.
type ScanChange int

const (
	// Unknown means there's nothing to compare against yet (no prior
	// backup, or the item was never scanned before).
	Unknown ScanChange = iota
	// Same means the content is byte-identical to what's already backed up.
	Same
	// Different means the content changed since the last backup.
	Different
	// New means the item didn't exist in the last backup at all.
	New
	// Removed means the item was backed up before but no longer exists.
	Removed
)

func (c ScanChange) String() string {
	switch c {
	case Same:
		return "Same"
	case Different:
		return "Different"
	case New:
		return "New"
	case Removed:
		return "Removed"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the change as its lowercase name, for the reporter's
// JSON document.
func (c ScanChange) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strings.ToLower(c.String()) + `"`), nil
}

// Novel reports whether this change should count toward "is there anything
// worth backing up" — i.e. it's not simply unchanged from before.
func (c ScanChange) Novel() bool {
	return c == Different || c == New
}
