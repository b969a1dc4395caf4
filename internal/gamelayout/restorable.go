package gamelayout

import (
	"archive/zip"
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

// restorableFile is a minimal, backup-location-agnostic view of a file
// that restore (or need_backup's comparison pass) can read from — either a
// plain file on disk or an entry inside a zip archive.
type restorableFile struct {
	StoredPath   string
	OriginalPath string
	Size         int64
	Container    string // non-empty for zip-sourced files; holds the archive path
}

// restorableFilesIn enumerates every file stored in the single backup
// backupName (a folder, or an archive for the zip format), with the
// original path each file came from.
func (g *GameLayout) restorableFilesIn(backupName string, format BackupFormat) []restorableFile {
	if format == FormatZip {
		return g.restorableFilesInZip(backupName)
	}
	return g.restorableFilesInSimple(backupName)
}

func (g *GameLayout) restorableFilesInSimple(backupName string) []restorableFile {
	backupDir := g.Path.Render() + "/" + backupName
	native, err := pathToNative(backupDir)
	if err != nil {
		return nil
	}

	driveDirs, err := os.ReadDir(native)
	if err != nil {
		return nil
	}

	var out []restorableFile
	for _, driveDir := range driveDirs {
		if !driveDir.IsDir() {
			continue
		}
		driveMapping, ok := g.Mapping.Drives[driveDir.Name()]
		if !ok {
			continue
		}

		driveNative := native + string(os.PathSeparator) + driveDir.Name()
		_ = walkFiles(driveNative, func(rawFile string, size int64) {
			relative := strings.TrimPrefix(rawFile, driveNative)
			relative = strings.TrimPrefix(filepathToSlash(relative), "/")
			out = append(out, restorableFile{
				StoredPath:   rawFile,
				OriginalPath: joinDrive(driveMapping, relative),
				Size:         size,
			})
		})
	}
	return out
}

func (g *GameLayout) restorableFilesInZip(backupName string) []restorableFile {
	archivePath := g.Path.Render() + "/" + backupName
	native, err := pathToNative(archivePath)
	if err != nil {
		return nil
	}

	r, err := zip.OpenReader(native)
	if err != nil {
		return nil
	}
	defer r.Close()

	var out []restorableFile
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := f.Name
		if !strings.HasPrefix(name, "drive-") {
			continue
		}
		parts := strings.SplitN(name, "/", 2)
		if len(parts) != 2 {
			continue
		}
		driveMapping, ok := g.Mapping.Drives[parts[0]]
		if !ok {
			continue
		}
		out = append(out, restorableFile{
			StoredPath:   name,
			OriginalPath: joinDrive(driveMapping, parts[1]),
			Size:         int64(f.UncompressedSize64),
			Container:    native,
		})
	}
	return out
}

func joinDrive(drive, remainder string) string {
	if drive == "" || drive == "/" {
		return "/" + remainder
	}
	return drive + "/" + remainder
}

// HashStoredFile computes the SHA-1 digest of f's stored copy — the backup
// contents, not the live file at OriginalPath — so a prior scan's hash can
// be compared against a freshly live-hashed file to classify it as
// unchanged. f.Container non-empty means the stored copy (at f.Path) is a
// zip entry rather than a plain file.
func HashStoredFile(f scanner.ScannedFile) (string, error) {
	if f.Container == "" {
		return strictpath.New(f.Path).SHA1()
	}

	r, err := zip.OpenReader(f.Container)
	if err != nil {
		return "", err
	}
	defer r.Close()

	for _, entry := range r.File {
		if entry.Name != f.Path {
			continue
		}
		src, err := entry.Open()
		if err != nil {
			return "", err
		}
		defer src.Close()

		h := sha1.New()
		if _, err := io.Copy(h, src); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}
	return "", os.ErrNotExist
}

// RestorableFiles returns every file a restore of the backup named id
// (full name or differential name) would write, combining the
// differential's files with whatever the full backup supplies and the
// differential doesn't omit.
func (g *GameLayout) RestorableFiles(id string) []scanner.ScannedFile {
	full, diff, ok := g.Mapping.FindByID(id)
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	var out []scanner.ScannedFile

	add := func(rf restorableFile) {
		if seen[rf.OriginalPath] {
			return
		}
		seen[rf.OriginalPath] = true
		out = append(out, scanner.ScannedFile{
			Path:         rf.StoredPath,
			OriginalPath: rf.OriginalPath,
			Size:         rf.Size,
			Container:    rf.Container,
		})
	}

	if diff != nil {
		for _, rf := range g.restorableFilesIn(diff.Name, diff.format()) {
			add(rf)
		}
		for _, rf := range g.restorableFilesIn(full.Name, full.format()) {
			if seen[rf.OriginalPath] || diff.Omit.omitsFile(rf.OriginalPath) {
				continue
			}
			add(rf)
		}
		return out
	}

	for _, rf := range g.restorableFilesIn(full.Name, full.format()) {
		add(rf)
	}
	return out
}
