//go:build windows

package registrystore

import (
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows/registry"

	"vaultkeeper/internal/changekind"
	"vaultkeeper/internal/regpath"
)

// Scan walks the live registry starting at path (e.g. "HKEY_CURRENT_USER\Software\Foo"),
// classifying each key and value against the previous backup's Hives, and
// skipping anything the filter or toggler excludes.
func Scan(game string, path regpath.Item, filter Filter, toggled Toggler, previous Hives) ([]Scanned, error) {
	hiveName, key, ok := path.SplitHive()
	if !ok {
		return nil, ErrUnrecognizedHive
	}
	hive, ok := predefFromName(hiveName)
	if !ok {
		return nil, ErrUnrecognizedHive
	}
	return scanKey(game, hive, hiveName, key, filter, toggled, previous)
}

func scanKey(game string, hive registry.Key, hiveName, key string, filter Filter, toggled Toggler, previous Hives) ([]Scanned, error) {
	var found []Scanned

	itemPath := regpath.NewItem(hiveName + `\` + key)
	if filter.IsRegistryIgnored(itemPath) {
		return found, nil
	}

	opened, err := registry.OpenKey(hive, key, registry.READ)
	if err != nil {
		return found, nil
	}
	defer opened.Close()

	liveEntries := readKey(opened)
	liveValues := make(ScannedValues, len(liveEntries))

	prevEntries, havePrev := previous.Get(hiveName, key)

	for name, entry := range liveEntries {
		change := changekind.New
		if havePrev {
			if pe, ok := prevEntries[name]; ok {
				if pe.Equal(entry) {
					change = changekind.Same
				} else {
					change = changekind.Different
				}
			}
		}
		liveValues[name] = ScannedValue{
			Ignored: toggled.IsIgnored(game, itemPath, strPtr(name)),
			Change:  change,
		}
	}

	keyChange := changekind.New
	if havePrev && prevEntries.Equal(liveEntries) {
		keyChange = changekind.Same
	} else if havePrev {
		keyChange = changekind.Different
	}

	found = append(found, Scanned{
		Path:    itemPath,
		Ignored: toggled.IsIgnored(game, itemPath, nil),
		Change:  keyChange,
		Values:  liveValues,
	})

	names, err := opened.ReadSubKeyNames(-1)
	if err != nil {
		return found, nil
	}
	for _, name := range names {
		if strings.Contains(name, "/") {
			log.Warn().Str("game", game).Str("key", key).Str("subkey", name).
				Msg("skipping registry subkey containing a slash")
			continue
		}
		children, err := scanKey(game, hive, hiveName, key+`\`+name, filter, toggled, previous)
		if err == nil {
			found = append(found, children...)
		}
	}

	return found, nil
}

// Incorporate re-reads the live value of each scanned key, building a Hives
// tree carrying the actual typed entries rather than just their change
// flags. Ignored keys are skipped and ignored values are dropped, mirroring
// the original's Hives::incorporate, which looks values up again at plan
// time instead of carrying them through the scan.
func Incorporate(scanned []Scanned) (Hives, error) {
	hives := Hives{}
	for _, s := range scanned {
		if s.Ignored {
			continue
		}
		hiveName, subkey, ok := s.Path.SplitHive()
		if !ok {
			continue
		}
		hive, ok := predefFromName(hiveName)
		if !ok {
			continue
		}

		opened, err := registry.OpenKey(hive, subkey, registry.READ)
		if err != nil {
			continue
		}
		live := readKey(opened)
		opened.Close()

		entries := Entries{}
		for name, entry := range live {
			if v, ok := s.Values[name]; ok && v.Ignored {
				continue
			}
			entries[name] = entry
		}

		keys, ok := hives[hiveName]
		if !ok {
			keys = Keys{}
			hives[hiveName] = keys
		}
		keys[subkey] = entries
	}
	return hives, nil
}

func readKey(k registry.Key) Entries {
	entries := Entries{}

	names, err := k.ReadValueNames(-1)
	if err != nil {
		return entries
	}

	for _, name := range names {
		_, vtype, err := k.GetValue(name, nil)
		if err != nil {
			continue
		}
		entry := readValue(k, name, vtype)
		if !entry.Empty() {
			entries[name] = entry
		}
	}
	return entries
}

func readValue(k registry.Key, name string, vtype uint32) Entry {
	switch vtype {
	case registry.SZ:
		if v, _, err := k.GetStringValue(name); err == nil {
			return Entry{SZ: &v}
		}
	case registry.EXPAND_SZ:
		if v, _, err := k.GetStringValue(name); err == nil {
			return Entry{ExpandSZ: &v}
		}
	case registry.MULTI_SZ:
		if vs, _, err := k.GetStringsValue(name); err == nil {
			joined := strings.Join(vs, "\x00")
			return Entry{MultiSZ: &joined}
		}
	case registry.DWORD, registry.BINARY:
		if vtype == registry.DWORD {
			if v, _, err := k.GetIntegerValue(name); err == nil {
				d := uint32(v)
				return Entry{DWord: &d}
			}
		}
		if v, _, err := k.GetBinaryValue(name); err == nil {
			return Entry{Binary: v}
		}
	case registry.QWORD:
		if v, _, err := k.GetIntegerValue(name); err == nil {
			return Entry{QWord: &v}
		}
	}
	return Entry{}
}

func predefFromName(name string) (registry.Key, bool) {
	switch name {
	case "HKEY_CURRENT_USER":
		return registry.CURRENT_USER, true
	case "HKEY_LOCAL_MACHINE":
		return registry.LOCAL_MACHINE, true
	case "HKEY_USERS":
		return registry.USERS, true
	case "HKEY_CLASSES_ROOT":
		return registry.CLASSES_ROOT, true
	case "HKEY_CURRENT_CONFIG":
		return registry.CURRENT_CONFIG, true
	default:
		return 0, false
	}
}

func strPtr(s string) *string { return &s }

// Restore recreates every key and sets every value in hives against the
// live registry. It keeps going on individual failures and reports a single
// aggregate error, matching the original's best-effort restore.
func Restore(hives Hives) error {
	failed := false

	for hiveName, keys := range hives {
		hive, ok := predefFromName(hiveName)
		if !ok {
			failed = true
			continue
		}
		for keyName, entries := range keys {
			created, _, err := registry.CreateKey(hive, keyName, registry.ALL_ACCESS)
			if err != nil {
				failed = true
				continue
			}
			for name, entry := range entries {
				if !writeValue(created, name, entry) {
					failed = true
				}
			}
			created.Close()
		}
	}

	if failed {
		return ErrRestoreIncomplete
	}
	return nil
}

func writeValue(k registry.Key, name string, entry Entry) bool {
	switch {
	case entry.SZ != nil:
		return k.SetStringValue(name, *entry.SZ) == nil
	case entry.ExpandSZ != nil:
		return k.SetExpandStringValue(name, *entry.ExpandSZ) == nil
	case entry.MultiSZ != nil:
		return k.SetStringsValue(name, strings.Split(*entry.MultiSZ, "\x00")) == nil
	case entry.DWord != nil:
		return k.SetDWordValue(name, *entry.DWord) == nil
	case entry.QWord != nil:
		return k.SetQWordValue(name, *entry.QWord) == nil
	case entry.Binary != nil:
		return k.SetBinaryValue(name, entry.Binary) == nil
	default:
		return false
	}
}
