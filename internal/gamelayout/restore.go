package gamelayout

import (
	"archive/zip"
	"io"
	"os"
	"time"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

const maxRestoreAttempts = 99

// Restore writes every file named by backupID back to its original
// location (redirect-adjusted), and restores the registry payload
// attached to that backup, if any.
func Restore(layout *GameLayout, backupID string, redirects []config.RedirectConfig) BackupInfo {
	var info BackupInfo

	for _, rf := range layout.RestorableFiles(backupID) {
		target := config.Resolve(redirects, strictpath.New(rf.OriginalPath), true)
		if err := restoreOneFile(rf, target, layout.Mapping.Name); err != nil {
			info.addFailedFile(rf.OriginalPath)
		}
	}

	full, diff, ok := layout.Mapping.FindByID(backupID)
	if !ok {
		return info
	}
	hives, err := loadBackupRegistry(layout, full, diff)
	if err == nil && len(hives) > 0 {
		if err := registrystore.Restore(hives); err != nil {
			info.addFailedRegistry(layout.Mapping.Name)
		}
	}

	return info
}

func loadBackupRegistry(layout *GameLayout, full *FullBackup, diff *DifferentialBackup) (registrystore.Hives, error) {
	if diff != nil && !diff.Omit.Registry {
		path := layout.Path.Render() + "/" + diff.Name + "/registry.yaml"
		hives, err := registrystore.Load(mustInterpret(strictpath.New(path)))
		if err == nil && len(hives) > 0 {
			return hives, nil
		}
	}
	if diff != nil && diff.Omit.Registry {
		return registrystore.Hives{}, nil
	}
	path := layout.Path.Render() + "/" + full.Name + "/registry.yaml"
	return registrystore.Load(mustInterpret(strictpath.New(path)))
}

// restoreOneFile writes rf to target, retrying with increasing backoff on
// transient failures (antivirus locks, slow network shares): up to
// maxRestoreAttempts tries, sleeping attempt*len(gameName) milliseconds
// between them.
func restoreOneFile(rf scanner.ScannedFile, target strictpath.Path, gameName string) error {
	if rf.Container == "" && target.SameContent(strictpath.New(rf.Path)) {
		return nil
	}

	nativeTarget, err := target.Interpret()
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxRestoreAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt*len(gameName)) * time.Millisecond)
		}
		if err := os.MkdirAll(parentDir(nativeTarget), 0o755); err != nil {
			lastErr = err
			continue
		}
		_ = os.Chmod(nativeTarget, 0o644)

		if rf.Container != "" {
			lastErr = copyFromZip(rf, nativeTarget)
		} else {
			lastErr = copyPlainFile(rf.Path, nativeTarget)
		}
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func copyPlainFile(sourceNative, targetNative string) error {
	src, err := os.Open(sourceNative)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(targetNative)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func copyFromZip(rf scanner.ScannedFile, targetNative string) error {
	r, err := zip.OpenReader(rf.Container)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != rf.Path {
			continue
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := os.Create(targetNative)
		if err != nil {
			return err
		}
		defer dst.Close()

		_, err = io.Copy(dst, src)
		return err
	}
	return os.ErrNotExist
}
