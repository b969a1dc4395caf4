package gamelayout

import (
	"os"
	"strings"
	"time"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

// BackupPlan is what PlanBackup decided to do: which backup slot to write
// (full or differential), and exactly which files/registry keys belong in
// it.
type BackupPlan struct {
	Backup          Backup
	Files           []scanner.ScannedFile
	RegistryPayload registrystore.Hives
	OmitRegistry    bool
}

// promoteDotFull renames the in-place "." full backup to a timestamped
// folder the moment a differential is about to be attached to it: a "."
// full writes directly into the game folder, and a differential can't live
// there too without colliding with the full's own files. The new name is
// generated one second before now so it never collides with the
// differential's own name, which is generated from now itself.
func (g *GameLayout) promoteDotFull(now time.Time) {
	full := g.Mapping.latestFullBackup()
	if full == nil || full.Name != "." {
		return
	}

	newName := "backup-" + generateBackupTimestamp(now.Add(-time.Second))

	nativeBase, err := g.Path.Interpret()
	if err != nil {
		return
	}
	nativeDest := nativeBase + string(os.PathSeparator) + newName
	if err := os.MkdirAll(nativeDest, 0o755); err != nil {
		return
	}

	entries, err := os.ReadDir(nativeBase)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == newName {
			continue
		}
		if !strings.HasPrefix(name, "drive-") && name != "registry.yaml" {
			continue
		}
		_ = os.Rename(nativeBase+string(os.PathSeparator)+name, nativeDest+string(os.PathSeparator)+name)
	}

	full.Name = newName
}

// PlanBackup decides whether a backup is needed and, if so, builds the
// exact set of files/registry keys it should contain. Returns false if
// nothing needs to be backed up. When it decides to attach the first
// differential to the existing full, it promotes a "."-named full to a
// timestamped folder first (see promoteDotFull).
func (g *GameLayout) PlanBackup(scan scanner.ScanInfo, now time.Time, format config.BackupFormats) (BackupPlan, bool) {
	if len(scan.Files) == 0 && len(scan.Registry) == 0 {
		return BackupPlan{}, false
	}
	if !g.NeedBackup(scan) {
		return BackupPlan{}, false
	}

	fulls, diffs := g.countBackups()
	// The "." full that a fresh mapping starts with has no timestamp until a
	// backup is written into it, so it does not count as an existing full.
	if latest := g.Mapping.latestFullBackup(); latest != nil && latest.Name == "." && latest.When == nil {
		fulls = 0
	}
	var backup Backup
	if fulls > 0 && diffs < g.Retention.Differential {
		g.promoteDotFull(now)
		when := now
		backup = Backup{Kind: KindDifferential, Differential: &DifferentialBackup{
			Name: g.generateBackupName(KindDifferential, now, format),
			When: &when,
		}}
	} else {
		when := now
		backup = Backup{Kind: KindFull, Full: &FullBackup{
			Name: g.generateBackupName(KindFull, now, format),
			When: &when,
		}}
	}

	var files []scanner.ScannedFile
	latestFull := g.Mapping.latestFullBackup()

	for _, f := range scan.Files {
		if f.Ignored {
			continue
		}
		if backup.Kind == KindDifferential && latestFull != nil {
			stored := g.gameFile(f.OriginalPath, latestFull.Name)
			if stored.Exists() && stored.SameContent(strictpath.New(f.OriginalPath)) {
				continue
			}
		}
		files = append(files, f)
	}

	if backup.Kind == KindDifferential && latestFull != nil {
		storedFull := map[string]bool{}
		for _, rf := range g.restorableFilesIn(latestFull.Name, latestFull.format()) {
			storedFull[rf.OriginalPath] = true
		}
		for _, f := range scan.Files {
			if !f.Ignored {
				delete(storedFull, f.OriginalPath)
			}
		}
		for omitted := range storedFull {
			backup.Differential.Omit.Files = append(backup.Differential.Omit.Files, omitted)
		}
	}

	scanned := hivesFromScan(scan)
	var payload registrystore.Hives
	omitRegistry := false

	switch backup.Kind {
	case KindFull:
		if len(scanned) > 0 {
			payload = scanned
		}
	case KindDifferential:
		if latestFull != nil {
			fullRegFile := g.Path.Render() + "/" + latestFull.Name + "/registry.yaml"
			stored, err := registrystore.Load(mustInterpret(strictpath.New(fullRegFile)))
			haveStored := err == nil && len(stored) > 0
			switch {
			case len(scanned) == 0 && !haveStored:
			case len(scanned) == 0 && haveStored:
				omitRegistry = true
			case len(scanned) > 0 && !haveStored:
				payload = scanned
			default:
				if !hivesEqual(scanned, stored) {
					payload = scanned
				}
			}
		}
	}

	plan := BackupPlan{Backup: backup, Files: files, RegistryPayload: payload, OmitRegistry: omitRegistry}
	if backup.Kind == KindDifferential {
		backup.Differential.Omit.Registry = omitRegistry
	}
	return plan, true
}

// InsertBackup adds the planned backup into the mapping, evicting the
// oldest full backup (and its differentials) when retention.full is
// exceeded.
func (g *GameLayout) InsertBackup(b Backup) {
	switch b.Kind {
	case KindFull:
		g.Mapping.Backups = append(g.Mapping.Backups, *b.Full)
		for uint8(len(g.Mapping.Backups)) > g.Retention.Full {
			g.Mapping.Backups = g.Mapping.Backups[1:]
		}
	case KindDifferential:
		if len(g.Mapping.Backups) > 0 {
			last := &g.Mapping.Backups[len(g.Mapping.Backups)-1]
			last.Children = append(last.Children, *b.Differential)
		}
	}
}
