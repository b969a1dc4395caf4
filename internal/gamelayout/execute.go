package gamelayout

import (
	"os"
	"time"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/scanner"
)

// BackUp plans, executes, and records a backup for scan, in that order: the
// plan is inserted into the mapping only after its files/registry payload
// have been written, and the mapping is saved only after irrelevant leftover
// folders from a superseded plan have been swept.
func (g *GameLayout) BackUp(scan scanner.ScanInfo, now time.Time, format config.BackupFormats) (BackupInfo, bool) {
	plan, ok := g.PlanBackup(scan, now, format)
	if !ok {
		return BackupInfo{}, false
	}

	var info BackupInfo
	if plan.Backup.Format() == FormatZip {
		info = g.executeZip(plan, format)
	} else {
		info = g.executeSimple(plan)
	}

	g.InsertBackup(plan.Backup)

	for _, irrelevant := range IrrelevantParents(g.Path, g.Mapping) {
		if native, err := irrelevant.Interpret(); err == nil {
			_ = os.RemoveAll(native)
		}
	}

	_ = g.Save()

	return info, true
}
