package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/changekind"
	"vaultkeeper/internal/config"
	"vaultkeeper/internal/manifest"
)

func TestSubstitute(t *testing.T) {
	t.Parallel()

	root := config.Root{Path: "/games/steam/MyGame"}
	out := substitute("<base>/saves/<game>.dat", "MyGame", root)
	assert.Equal(t, "/games/steam/MyGame/saves/MyGame.dat", out)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	prior := Prior{Files: map[string]PriorFile{
		"/saves/slot1.dat": {Hash: "abc", Size: 10},
	}}

	assert.Equal(t, changekind.Same, classify("/saves/slot1.dat", "abc", 10, prior))
	assert.Equal(t, changekind.Different, classify("/saves/slot1.dat", "def", 10, prior))
	assert.Equal(t, changekind.New, classify("/saves/slot2.dat", "abc", 10, prior))
}

func TestScanFindsFilesAndClassifiesChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "save.dat"), []byte("hello"), 0o644))

	entry := manifest.Game{
		Files: map[string]manifest.FileEntry{
			"<base>/save.dat": {},
		},
	}

	opts := Options{
		Roots: []config.Root{{Path: dir}},
		Host:  manifest.OSLinux,
	}

	info := Scan("MyGame", entry, opts)
	require.Len(t, info.Files, 1)
	assert.Equal(t, changekind.New, info.Files[0].Change)
	assert.False(t, info.Files[0].Ignored)
}

func TestScanSkipsFilteredFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.txt"), []byte("debug"), 0o644))

	entry := manifest.Game{
		Files: map[string]manifest.FileEntry{
			"<base>/logs.txt": {},
		},
	}

	filter := &config.BackupFilter{IgnoredPaths: []string{dir + "/logs.txt"}}
	opts := Options{
		Roots:  []config.Root{{Path: dir}},
		Host:   manifest.OSLinux,
		Filter: filter,
	}

	info := Scan("MyGame", entry, opts)
	assert.Empty(t, info.Files)
}

func TestScanSkipsEntryNotAllowedForStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "save.dat"), []byte("hello"), 0o644))

	entry := manifest.Game{
		Files: map[string]manifest.FileEntry{
			"<base>/save.dat": {When: []manifest.FileConstraint{{Store: manifest.StoreGOG}}},
		},
	}

	opts := Options{
		Roots: []config.Root{{Path: dir, Store: manifest.StoreSteam}},
		Host:  manifest.OSLinux,
	}

	info := Scan("MyGame", entry, opts)
	assert.Empty(t, info.Files)
}

func TestScanInfoCanReportGame(t *testing.T) {
	t.Parallel()

	empty := ScanInfo{}
	assert.False(t, empty.CanReportGame(false))
	assert.True(t, empty.CanReportGame(true))

	withFiles := ScanInfo{Files: []ScannedFile{{}}}
	assert.True(t, withFiles.CanReportGame(false))
}

func TestScanInfoOverallChange(t *testing.T) {
	t.Parallel()

	same := ScanInfo{Files: []ScannedFile{{Change: changekind.Same}}}
	assert.Equal(t, changekind.Same, same.OverallChange())

	mixed := ScanInfo{Files: []ScannedFile{{Change: changekind.Same}, {Change: changekind.New}}}
	assert.Equal(t, changekind.New, mixed.OverallChange())

	withDiff := ScanInfo{Files: []ScannedFile{{Change: changekind.New}, {Change: changekind.Different}}}
	assert.Equal(t, changekind.Different, withDiff.OverallChange())
}

func TestScanInfoTotalSizeSkipsIgnored(t *testing.T) {
	t.Parallel()

	info := ScanInfo{Files: []ScannedFile{
		{Size: 100, Ignored: false},
		{Size: 50, Ignored: true},
	}}
	assert.Equal(t, int64(100), info.TotalSize())
}
