package config

import "vaultkeeper/internal/regpath"

// ToggledPaths records the user's per-game, per-path backup on/off
// overrides. A path with no entry is enabled by default.
type ToggledPaths map[string]map[string]bool

// IsIgnored reports whether the given rendered path is disabled for game.
func (t ToggledPaths) IsIgnored(game, renderedPath string) bool {
	perGame, ok := t[game]
	if !ok {
		return false
	}
	enabled, ok := perGame[renderedPath]
	if !ok {
		return false
	}
	return !enabled
}

// Enable sets the toggle for (game, path) explicitly, or removes the
// entry entirely when enabled matches the default (true).
func (t ToggledPaths) Enable(game, renderedPath string, enabled bool) {
	perGame, ok := t[game]
	if !ok {
		perGame = map[string]bool{}
		t[game] = perGame
	}
	if enabled {
		delete(perGame, renderedPath)
	} else {
		perGame[renderedPath] = enabled
	}
	if len(perGame) == 0 {
		delete(t, game)
	}
}

// ToggledRegistryEntry is a tri-state override for one registry key: the
// key itself may be on/off/unset, and individual named values under it may
// each independently be on/off/unset. This mirrors the original's untagged
// Unset/Key/Complex enum using Go's nil-vs-zero-value idiom instead.
type ToggledRegistryEntry struct {
	Key    *bool
	Values map[string]bool
}

// prune collapses a Complex entry back down to Key or Unset once it no
// longer carries information beyond what the key-level toggle already
// implies, matching the original format's self-pruning behavior so the
// sidecar never accumulates redundant overrides.
func (e *ToggledRegistryEntry) prune() {
	if e.Key == nil && len(e.Values) == 0 {
		return
	}
	if e.Key != nil {
		for name, v := range e.Values {
			if v == *e.Key {
				delete(e.Values, name)
			}
		}
		if *e.Key {
			e.Key = nil
		}
	}
}

func (e *ToggledRegistryEntry) enableKey(enabled bool) {
	v := enabled
	e.Key = &v
}

func (e *ToggledRegistryEntry) enableValue(name string, enabled bool) {
	if e.Values == nil {
		e.Values = map[string]bool{}
	}
	e.Values[name] = enabled
}

// KeyEnabled reports the key-level toggle, if any override is set.
func (e ToggledRegistryEntry) KeyEnabled() (bool, bool) {
	if e.Key == nil {
		return false, false
	}
	return *e.Key, true
}

// ValueEnabled reports the value-level toggle for name, if set.
func (e ToggledRegistryEntry) ValueEnabled(name string) (bool, bool) {
	v, ok := e.Values[name]
	return v, ok
}

// FullyEnabled reports whether the key and every known value override are
// enabled (an entirely unset entry counts as fully enabled).
func (e ToggledRegistryEntry) FullyEnabled() bool {
	if e.Key != nil && !*e.Key {
		return false
	}
	for _, v := range e.Values {
		if !v {
			return false
		}
	}
	return true
}

func (e ToggledRegistryEntry) empty() bool {
	return e.Key == nil && len(e.Values) == 0
}

// ToggledRegistry records the user's per-game, per-key (and per-value)
// backup on/off overrides.
type ToggledRegistry map[string]map[string]ToggledRegistryEntry

// IsIgnored reports whether the given registry item (or, if value is
// non-nil, the named value under it) is disabled for game.
func (t ToggledRegistry) IsIgnored(game string, path regpath.Item, value *string) bool {
	perGame, ok := t[game]
	if !ok {
		return false
	}

	rendered := path.Render()
	entry, ok := perGame[rendered]
	if !ok {
		return false
	}

	if value != nil {
		if enabled, ok := entry.ValueEnabled(*value); ok {
			return !enabled
		}
	}
	if enabled, ok := entry.KeyEnabled(); ok {
		return !enabled
	}
	return false
}

// Enable sets the toggle for (game, path[, value]) and prunes the entry
// back to its minimal representation, deleting it entirely if it no
// longer carries any override.
func (t ToggledRegistry) Enable(game string, path regpath.Item, value *string, enabled bool) {
	perGame, ok := t[game]
	if !ok {
		perGame = map[string]ToggledRegistryEntry{}
		t[game] = perGame
	}

	rendered := path.Render()
	entry := perGame[rendered]

	if value != nil {
		entry.enableValue(*value, enabled)
	} else {
		entry.enableKey(enabled)
	}
	entry.prune()

	if entry.empty() {
		delete(perGame, rendered)
	} else {
		perGame[rendered] = entry
	}
	if len(perGame) == 0 {
		delete(t, game)
	}
}
