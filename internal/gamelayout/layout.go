package gamelayout

import (
	"fmt"
	"time"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

// GameLayout owns one game's backup folder: its mapping sidecar and the
// retention policy governing inserts/evictions.
type GameLayout struct {
	Path      strictpath.Path
	Mapping   IndividualMapping
	Retention config.Retention
}

// Load opens (or freshly initializes) the layout at path for a game.
func Load(path strictpath.Path, name string, retention config.Retention) (*GameLayout, error) {
	mapping, err := LoadMapping(path, name)
	if err != nil {
		return nil, err
	}
	return &GameLayout{Path: path, Mapping: mapping, Retention: retention}, nil
}

// Save persists the mapping sidecar.
func (g *GameLayout) Save() error {
	return Save(g.Path, g.Mapping)
}

func (g *GameLayout) gameFile(original string, backupName string) strictpath.Path {
	originalPath := strictpath.New(original)
	drive, remainder := originalPath.SplitDrive()
	folder := g.Mapping.DriveFolderName(drive)
	return strictpath.New(fmt.Sprintf("%s/%s/%s/%s", g.Path.Render(), backupName, folder, remainder))
}

func (g *GameLayout) gameFileForZip(original string) string {
	originalPath := strictpath.New(original)
	drive, remainder := originalPath.SplitDrive()
	folder := g.Mapping.DriveFolderName(drive)
	return folder + "/" + remainder
}

func (g *GameLayout) countBackups() (full, differential uint8) {
	full = uint8(len(g.Mapping.Backups))
	if full > 0 {
		differential = uint8(len(g.Mapping.Backups[len(g.Mapping.Backups)-1].Children))
	}
	return
}

// NeedBackup reports whether scan's content differs in any way from what's
// already stored for this game, per the invariants in the backup state
// machine: new/changed files, deleted files, or (on Windows) a changed
// registry tree.
func (g *GameLayout) NeedBackup(scan scanner.ScanInfo) bool {
	full, diff := g.Mapping.latestBackup()
	if full == nil {
		return true
	}

	for _, f := range scan.Files {
		if f.Ignored {
			continue
		}
		if diff != nil {
			stored := g.gameFile(f.OriginalPath, diff.Name)
			if diff.Omit.omitsFile(f.OriginalPath) {
				return true
			}
			if stored.Exists() {
				if stored.SameContent(strictpath.New(f.OriginalPath)) {
					continue
				}
				return true
			}
		}
		stored := g.gameFile(f.OriginalPath, full.Name)
		if !stored.Exists() || !stored.SameContent(strictpath.New(f.OriginalPath)) {
			return true
		}
	}

	storedFiles := map[string]bool{}
	for _, f := range g.restorableFilesIn(full.Name, full.format()) {
		storedFiles[f.OriginalPath] = true
	}
	if diff != nil {
		for _, f := range g.restorableFilesIn(diff.Name, diff.format()) {
			storedFiles[f.OriginalPath] = true
		}
		for _, omitted := range diff.Omit.Files {
			delete(storedFiles, omitted)
		}
	}
	scannedFiles := map[string]bool{}
	for _, f := range scan.Files {
		if !f.Ignored {
			scannedFiles[f.OriginalPath] = true
		}
	}
	if !sameStringSet(storedFiles, scannedFiles) {
		return true
	}

	return g.needBackupRegistry(scan, full, diff)
}

func (g *GameLayout) needBackupRegistry(scan scanner.ScanInfo, full *FullBackup, diff *DifferentialBackup) bool {
	scanned := hivesFromScan(scan)
	fullRegFile := strictpath.New(g.Path.Render() + "/" + full.Name + "/registry.yaml")

	if diff == nil {
		stored, err := registrystore.Load(mustInterpret(fullRegFile))
		if err != nil || len(stored) == 0 {
			return len(scan.Registry) > 0
		}
		return !hivesEqual(stored, scanned)
	}

	diffRegFile := strictpath.New(g.Path.Render() + "/" + diff.Name + "/registry.yaml")
	storedFull, errFull := registrystore.Load(mustInterpret(fullRegFile))
	storedDiff, errDiff := registrystore.Load(mustInterpret(diffRegFile))

	haveFull := errFull == nil && len(storedFull) > 0
	haveDiff := errDiff == nil && len(storedDiff) > 0

	switch {
	case !haveFull && !haveDiff:
		return len(scan.Registry) > 0
	case haveFull && !haveDiff:
		if diff.Omit.Registry {
			return len(scan.Registry) > 0
		}
		return !hivesEqual(storedFull, scanned)
	default:
		return !hivesEqual(storedDiff, scanned)
	}
}

func sameStringSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func mustInterpret(p strictpath.Path) string {
	native, err := p.Interpret()
	if err != nil {
		return ""
	}
	return native
}

func hivesEqual(a, b registrystore.Hives) bool {
	if len(a) != len(b) {
		return false
	}
	for hiveName, keys := range a {
		otherKeys, ok := b[hiveName]
		if !ok || len(keys) != len(otherKeys) {
			return false
		}
		for subkey, entries := range keys {
			otherEntries, ok := otherKeys[subkey]
			if !ok || !entries.Equal(otherEntries) {
				return false
			}
		}
	}
	return true
}

func hivesFromScan(scan scanner.ScanInfo) registrystore.Hives {
	hives, err := registrystore.Incorporate(scan.Registry)
	if err != nil {
		return registrystore.Hives{}
	}
	return hives
}

func generateBackupTimestamp(now time.Time) string {
	return now.UTC().Format("20060102T150405") + "Z"
}

func (g *GameLayout) generateBackupName(kind BackupKind, now time.Time, format config.BackupFormats) string {
	if kind == KindFull && g.Retention.Full == 1 && format.Chosen == config.BackupFormatSimple {
		return "."
	}
	name := "backup-" + generateBackupTimestamp(now)
	if format.Chosen == config.BackupFormatZip {
		name += ".zip"
	}
	return name
}
