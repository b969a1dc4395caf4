// Package regpath implements RegistryItem: a normalized registry path value
// with the same prefix/containment semantics as strictpath.Path, but over
// backslash-separated components and a case-insensitive namespace.
package regpath

import "strings"

// Item is a registry path value: a single raw string, rendered with `/` and
// interpreted with `\`, with the same prefix/containment semantics as
// strictpath.Path but operating on backslash-separated components.
type Item struct {
	raw string
}

// NewItem builds an Item from a raw registry path (either separator accepted).
func NewItem(raw string) Item {
	return Item{raw: strings.TrimRight(raw, `\/`)}
}

// Raw returns the original raw string.
func (i Item) Raw() string { return i.raw }

// Render returns the path with forward slashes, for display and for the
// ScannedRegistry.Path field.
func (i Item) Render() string {
	return strings.ReplaceAll(i.raw, `\`, "/")
}

// Interpret returns the path with backslashes, for live registry access.
func (i Item) Interpret() string {
	return strings.ReplaceAll(i.raw, "/", `\`)
}

func (i Item) components() []string {
	norm := strings.ReplaceAll(i.raw, "/", `\`)
	var out []string
	for _, c := range strings.Split(norm, `\`) {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// SplitHive splits the item into its hive name and the remaining subkey
// path. Returns ok=false if the item doesn't start with a recognized hive.
func (i Item) SplitHive() (hive, subkey string, ok bool) {
	parts := i.components()
	if len(parts) == 0 {
		return "", "", false
	}
	name := normalizeHiveName(parts[0])
	if name == "" {
		return "", "", false
	}
	return name, strings.Join(parts[1:], `\`), true
}

var hiveAliases = map[string]string{
	"hkey_current_user":  "HKEY_CURRENT_USER",
	"hkcu":                "HKEY_CURRENT_USER",
	"hkey_local_machine": "HKEY_LOCAL_MACHINE",
	"hklm":                "HKEY_LOCAL_MACHINE",
	"hkey_users":          "HKEY_USERS",
	"hku":                 "HKEY_USERS",
	"hkey_classes_root":   "HKEY_CLASSES_ROOT",
	"hkcr":                "HKEY_CLASSES_ROOT",
	"hkey_current_config": "HKEY_CURRENT_CONFIG",
	"hkcc":                "HKEY_CURRENT_CONFIG",
}

func normalizeHiveName(s string) string {
	return hiveAliases[strings.ToLower(s)]
}

// IsPrefixOf reports whether i is a strict, component-wise prefix of other.
func (i Item) IsPrefixOf(other Item) bool {
	us := i.components()
	them := other.components()
	if len(us) >= len(them) {
		return false
	}
	for idx, c := range us {
		if !strings.EqualFold(c, them[idx]) {
			return false
		}
	}
	return true
}

// Equal reports whether two items refer to the same key, case-insensitively
// (the registry namespace is case-insensitive).
func (i Item) Equal(other Item) bool {
	return strings.EqualFold(i.Interpret(), other.Interpret())
}

// NearestPrefix returns the longest of others that is a strict prefix of i.
func (i Item) NearestPrefix(others []Item) (Item, bool) {
	us := i.components()
	var nearest Item
	nearestLen := -1
	found := false
	for _, other := range others {
		them := other.components()
		if len(them) >= len(us) {
			continue
		}
		match := true
		for idx, c := range them {
			if !strings.EqualFold(c, us[idx]) {
				match = false
				break
			}
		}
		if match && len(them) > nearestLen {
			nearest = other
			nearestLen = len(them)
			found = true
		}
	}
	return nearest, found
}
