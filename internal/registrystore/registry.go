// Package registrystore models a tree of Windows registry hives, keys, and
// typed values, with YAML (de)serialization and diffing against a prior
// snapshot. On non-Windows builds the live-registry operations are inert.
package registrystore

import (
	"bytes"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Entry is a tagged union over the six registry value types. Exactly one
// field is populated; an Entry with none set is considered empty and is
// pruned during serialization.
type Entry struct {
	SZ       *string `yaml:"sz,omitempty"`
	ExpandSZ *string `yaml:"expandSz,omitempty"`
	MultiSZ  *string `yaml:"multiSz,omitempty"`
	DWord    *uint32 `yaml:"dword,omitempty"`
	QWord    *uint64 `yaml:"qword,omitempty"`
	Binary   []byte  `yaml:"binary,omitempty"`
}

// Empty reports whether no typed field is set.
func (e Entry) Empty() bool {
	return e.SZ == nil && e.ExpandSZ == nil && e.MultiSZ == nil &&
		e.DWord == nil && e.QWord == nil && e.Binary == nil
}

// Equal compares two entries for value equality.
func (e Entry) Equal(o Entry) bool {
	if !ptrStrEqual(e.SZ, o.SZ) || !ptrStrEqual(e.ExpandSZ, o.ExpandSZ) || !ptrStrEqual(e.MultiSZ, o.MultiSZ) {
		return false
	}
	if !ptrU32Equal(e.DWord, o.DWord) || !ptrU64Equal(e.QWord, o.QWord) {
		return false
	}
	return bytes.Equal(e.Binary, o.Binary)
}

func ptrStrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ptrU32Equal(a, b *uint32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ptrU64Equal(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Entries maps value name to Entry within one key.
type Entries map[string]Entry

// Equal compares two value maps entry by entry; an empty entry present on
// only one side counts as a difference.
func (e Entries) Equal(o Entries) bool {
	if len(e) != len(o) {
		return false
	}
	for name, v := range e {
		ov, ok := o[name]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Keys maps a backslash-separated subkey path to its Entries.
type Keys map[string]Entries

// Hives maps a hive name ("HKEY_CURRENT_USER", "HKEY_LOCAL_MACHINE") to Keys.
type Hives map[string]Keys

// Get returns the Entries stored for (hive, subkey), if present.
func (h Hives) Get(hive, subkey string) (Entries, bool) {
	keys, ok := h[hive]
	if !ok {
		return nil, false
	}
	entries, ok := keys[subkey]
	return entries, ok
}

// Prune removes empty Entry values, matching the original format's rule that
// an Entry with no type set is never persisted. A subkey left with no
// entries is kept as an empty map; only a hive with no subkeys is dropped.
func (h Hives) Prune() Hives {
	out := Hives{}
	for hive, keys := range h {
		outKeys := Keys{}
		for subkey, entries := range keys {
			outEntries := Entries{}
			for name, entry := range entries {
				if !entry.Empty() {
					outEntries[name] = entry
				}
			}
			outKeys[subkey] = outEntries
		}
		if len(outKeys) > 0 {
			out[hive] = outKeys
		}
	}
	return out
}

// marshalSorted gives yaml.v3 a stable key order on marshal, since Go map
// iteration order is randomized but the sidecar format wants deterministic
// output so unrelated saves diff cleanly.
func marshalSorted(m map[string]any, encode func(v any) (*yaml.Node, error)) (*yaml.Node, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		v, err := encode(m[k])
		if err != nil {
			return nil, err
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		node.Content = append(node.Content, keyNode, v)
	}
	return node, nil
}

// MarshalYAML gives Hives a sorted, deterministic encoding.
func (h Hives) MarshalYAML() (interface{}, error) {
	m := make(map[string]any, len(h))
	for k, v := range h {
		m[k] = v
	}
	return marshalSorted(m, func(v any) (*yaml.Node, error) {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

// MarshalYAML gives Keys a sorted, deterministic encoding.
func (k Keys) MarshalYAML() (interface{}, error) {
	m := make(map[string]any, len(k))
	for key, v := range k {
		m[key] = v
	}
	return marshalSorted(m, func(v any) (*yaml.Node, error) {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

// MarshalYAML gives Entries a sorted, deterministic encoding.
func (e Entries) MarshalYAML() (interface{}, error) {
	m := make(map[string]any, len(e))
	for key, v := range e {
		m[key] = v
	}
	return marshalSorted(m, func(v any) (*yaml.Node, error) {
		var n yaml.Node
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

// Load reads a Hives tree from a YAML sidecar at path. A missing file yields
// an empty, non-error tree.
func Load(path string) (Hives, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Hives{}, nil
		}
		return nil, err
	}
	var h Hives
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, err
	}
	if h == nil {
		h = Hives{}
	}
	return h, nil
}

// Marshal renders the pruned tree as YAML, for callers (e.g. zip-format
// backups) that embed it somewhere other than a standalone sidecar file.
func Marshal(hives Hives) ([]byte, error) {
	return yaml.Marshal(hives.Prune())
}

// Save writes the pruned tree as YAML at path, but only if the content
// differs from what's already on disk — this avoids touching the sidecar's
// mtime for a no-op save.
func Save(path string, hives Hives) error {
	pruned := hives.Prune()

	data, err := yaml.Marshal(pruned)
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}

	return os.WriteFile(path, data, 0o644)
}

