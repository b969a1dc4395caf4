package gamelayout

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

func TestBackUpAndRestoreSimpleRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/live/slot1.dat"
	require.NoError(t, writeFileForTest(source, "save-data"))

	gl := newTestLayout(t, config.DefaultRetention())
	scan := scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{{OriginalPath: source, Path: source}}}

	info, ok := gl.BackUp(scan, fixedTime(), config.DefaultBackupFormats())
	require.True(t, ok)
	assert.True(t, info.OK())

	require.NoError(t, os.Remove(source))

	restoreInfo := Restore(gl, "", nil)
	assert.True(t, restoreInfo.OK())

	data, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "save-data", string(data))
}

func TestBackUpZipFormatAndRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/live/slot1.dat"
	require.NoError(t, writeFileForTest(source, "zipped-save"))

	retention := config.Retention{Full: 1}
	gl := newTestLayout(t, retention)

	format := config.DefaultBackupFormats()
	format.Chosen = config.BackupFormatZip

	scan := scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{{OriginalPath: source, Path: source}}}

	info, ok := gl.BackUp(scan, fixedTime(), format)
	require.True(t, ok)
	assert.True(t, info.OK())
	require.Len(t, gl.Mapping.Backups, 1)
	assert.Equal(t, FormatZip, gl.Mapping.Backups[0].format())

	require.NoError(t, os.Remove(source))

	restoreInfo := Restore(gl, "", nil)
	assert.True(t, restoreInfo.OK())

	data, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, "zipped-save", string(data))
}

func TestBackUpRemovesSupersededBackupFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kept := dir + "/live/keep.dat"
	removed := dir + "/live/gone.dat"
	require.NoError(t, writeFileForTest(kept, "keep"))
	require.NoError(t, writeFileForTest(removed, "gone"))

	gl := newTestLayout(t, config.DefaultRetention())
	scan := scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{
		{OriginalPath: kept, Path: kept},
		{OriginalPath: removed, Path: removed},
	}}
	_, ok := gl.BackUp(scan, fixedTime(), config.DefaultBackupFormats())
	require.True(t, ok)

	// Re-scan without the removed file and back up again; the in-place "."
	// full should drop its now-irrelevant copy of the removed file.
	scan = scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{
		{OriginalPath: kept, Path: kept},
	}}
	require.NoError(t, writeFileForTest(kept, "keep-changed"))
	_, ok = gl.BackUp(scan, fixedTime(), config.DefaultBackupFormats())
	require.True(t, ok)

	restorable := gl.RestorableFiles("")
	var sawRemoved bool
	for _, rf := range restorable {
		if rf.OriginalPath == removed {
			sawRemoved = true
		}
	}
	assert.False(t, sawRemoved)
}

func TestHashStoredFileMatchesLiveContentForSimpleBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/live/slot1.dat"
	require.NoError(t, writeFileForTest(source, "save-data"))

	gl := newTestLayout(t, config.DefaultRetention())
	scan := scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{{OriginalPath: source, Path: source}}}
	_, ok := gl.BackUp(scan, fixedTime(), config.DefaultBackupFormats())
	require.True(t, ok)

	restorable := gl.RestorableFiles("")
	require.Len(t, restorable, 1)

	hash, err := HashStoredFile(restorable[0])
	require.NoError(t, err)

	want, err := strictpath.New(source).SHA1()
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}

func TestHashStoredFileMatchesLiveContentForZipBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/live/slot1.dat"
	require.NoError(t, writeFileForTest(source, "zipped-save"))

	gl := newTestLayout(t, config.Retention{Full: 1})
	format := config.DefaultBackupFormats()
	format.Chosen = config.BackupFormatZip

	scan := scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{{OriginalPath: source, Path: source}}}
	_, ok := gl.BackUp(scan, fixedTime(), format)
	require.True(t, ok)

	restorable := gl.RestorableFiles("")
	require.Len(t, restorable, 1)

	hash, err := HashStoredFile(restorable[0])
	require.NoError(t, err)

	want, err := strictpath.New(source).SHA1()
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}
