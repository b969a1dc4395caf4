package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/changekind"
	"vaultkeeper/internal/config"
	"vaultkeeper/internal/gamelayout"
	"vaultkeeper/internal/manifest"
	"vaultkeeper/internal/regpath"
	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

func TestResolveGamesEmptyRequestReturnsAllSorted(t *testing.T) {
	t.Parallel()

	m := manifest.Manifest{Games: map[string]manifest.Game{"Zeta": {}, "Alpha": {}}}
	names := resolveGames(m, nil)
	assert.Equal(t, []string{"Alpha", "Zeta"}, names)
}

func TestResolveGamesFiltersUnknownNames(t *testing.T) {
	t.Parallel()

	m := manifest.Manifest{Games: map[string]manifest.Game{"Alpha": {}}}
	names := resolveGames(m, []string{"Alpha", "NotInManifest"})
	assert.Equal(t, []string{"Alpha"}, names)
}

func TestBuildGameReportMarksRegistryFailureAcrossAllEntries(t *testing.T) {
	t.Parallel()

	scan := scanner.ScanInfo{
		Registry: []registrystore.Scanned{
			{Path: regpath.NewItem(`HKCU\Software\MyGame\A`)},
			{Path: regpath.NewItem(`HKCU\Software\MyGame\B`)},
		},
	}

	clean := buildGameReport(scan, "processed", gamelayout.BackupInfo{})
	assert.False(t, clean.Registry[`HKCU/Software/MyGame/A`].Failed)

	withFailure := buildGameReport(scan, "failed", gamelayout.BackupInfo{FailedRegistry: []string{"MyGame"}})
	assert.True(t, withFailure.Registry[`HKCU/Software/MyGame/A`].Failed)
	assert.True(t, withFailure.Registry[`HKCU/Software/MyGame/B`].Failed)
}

func TestBuildGameReportPreservesFileChangeAndFailure(t *testing.T) {
	t.Parallel()

	scan := scanner.ScanInfo{
		Files: []scanner.ScannedFile{
			{Path: "/saves/slot1.dat", OriginalPath: "/saves/slot1.dat", Change: changekind.Different},
		},
	}
	info := gamelayout.BackupInfo{FailedFiles: []string{"/saves/slot1.dat"}}

	report := buildGameReport(scan, "failed", info)
	entry := report.Files["/saves/slot1.dat"]
	assert.True(t, entry.Failed)
	assert.Equal(t, changekind.Different, entry.Change)
}

func TestBuildPriorHashesTheStoredCopy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/live/slot1.dat"
	require.NoError(t, writeFileForOrchestratorTest(source, "save-data"))

	gl, err := gamelayout.Load(strictpath.New(t.TempDir()), "MyGame", config.DefaultRetention())
	require.NoError(t, err)

	scan := scanner.ScanInfo{Game: "MyGame", Files: []scanner.ScannedFile{{OriginalPath: source, Path: source}}}
	_, ok := gl.BackUp(scan, time.Now(), config.DefaultBackupFormats())
	require.True(t, ok)

	prior := buildPrior(gl)
	want, err := strictpath.New(source).SHA1()
	require.NoError(t, err)

	require.Contains(t, prior.Files, source)
	assert.Equal(t, want, prior.Files[source].Hash)
	assert.NotEmpty(t, prior.Files[source].Hash)
}

func TestDowngradeSkipFalseWhenNoBackupsExist(t *testing.T) {
	t.Parallel()

	gl, err := gamelayout.Load(strictpath.New(t.TempDir()), "MyGame", config.DefaultRetention())
	require.NoError(t, err)
	gl.Mapping.Backups = nil

	assert.False(t, downgradeSkip(gl, scanner.ScanInfo{}))
}

func TestDowngradeSkipTrueWhenLiveFileOlderThanLatestBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/slot1.dat"
	require.NoError(t, writeFileForOrchestratorTest(source, "data"))

	gl, err := gamelayout.Load(strictpath.New(t.TempDir()), "MyGame", config.DefaultRetention())
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	gl.Mapping.Backups = []gamelayout.FullBackup{{Name: ".", When: &future}}

	scan := scanner.ScanInfo{Files: []scanner.ScannedFile{{OriginalPath: source}}}
	assert.True(t, downgradeSkip(gl, scan))
}

func TestDowngradeSkipFalseWhenLiveFileNewerThanLatestBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := dir + "/slot1.dat"
	require.NoError(t, writeFileForOrchestratorTest(source, "data"))

	gl, err := gamelayout.Load(strictpath.New(t.TempDir()), "MyGame", config.DefaultRetention())
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	gl.Mapping.Backups = []gamelayout.FullBackup{{Name: ".", When: &past}}

	scan := scanner.ScanInfo{Files: []scanner.ScannedFile{{OriginalPath: source}}}
	assert.False(t, downgradeSkip(gl, scan))
}
