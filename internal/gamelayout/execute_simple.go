package gamelayout

import (
	"io"
	"os"
	"strings"

	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/strictpath"
)

// executeSimple writes plan's files as plain copies under
// {game-folder}/{backup-name}/drive-{X}/{remainder}, and the registry
// payload (if any) as a registry.yaml sidecar.
func (g *GameLayout) executeSimple(plan BackupPlan) BackupInfo {
	var info BackupInfo

	var relevant []string
	for _, f := range plan.Files {
		target := g.gameFile(f.OriginalPath, plan.Backup.Name())
		source := strictpath.New(f.OriginalPath)

		if source.SameContent(target) {
			relevant = append(relevant, target.Render())
			continue
		}
		if err := copyFile(source, target); err != nil {
			info.addFailedFile(f.OriginalPath)
			continue
		}
		relevant = append(relevant, target.Render())
	}

	registryFile := strictpath.New(g.Path.Render() + "/" + plan.Backup.Name() + "/registry.yaml")
	if len(plan.RegistryPayload) > 0 {
		if native, err := registryFile.Interpret(); err == nil {
			_ = registrystore.Save(native, plan.RegistryPayload)
		}
	} else if native, err := registryFile.Interpret(); err == nil {
		_ = os.Remove(native)
	}

	if plan.Backup.Kind == KindFull {
		g.removeIrrelevantBackupFiles(plan.Backup.Name(), relevant)
	}

	return info
}

func copyFile(source, target strictpath.Path) error {
	nativeTarget, err := target.Interpret()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(parentDir(nativeTarget), 0o755); err != nil {
		return err
	}

	src, err := source.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(nativeTarget)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func parentDir(native string) string {
	idx := lastSeparator(native)
	if idx < 0 {
		return "."
	}
	return native[:idx]
}

func lastSeparator(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' || s[i] == '\\' {
			return i
		}
	}
	return -1
}

// removeIrrelevantBackupFiles deletes anything under the "." backup's
// drive-*/ subtree that isn't one of the files just written, cleaning up
// deletions the user made since the previous full backup that shares this
// same in-place folder.
func (g *GameLayout) removeIrrelevantBackupFiles(backupName string, relevant []string) {
	relevantSet := make(map[string]bool, len(relevant))
	for _, r := range relevant {
		relevantSet[r] = true
	}

	backupDir := strictpath.New(g.Path.Render() + "/" + backupName)
	native, err := backupDir.Interpret()
	if err != nil {
		return
	}

	entries, err := os.ReadDir(native)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "drive-") {
			continue
		}
		_ = walkFiles(native+string(os.PathSeparator)+entry.Name(), func(path string, _ int64) {
			rendered := strictpath.New(path).Render()
			if !relevantSet[rendered] {
				_ = os.Remove(path)
			}
		})
	}
}
