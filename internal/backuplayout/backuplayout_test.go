package backuplayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/gamelayout"
	"vaultkeeper/internal/strictpath"
)

func TestLoadMissingDirectoryReturnsEmptyLayout(t *testing.T) {
	t.Parallel()

	base := strictpath.New(t.TempDir() + "/does-not-exist")
	layout, err := Load(base)
	require.NoError(t, err)
	assert.Empty(t, layout.Games)
}

func TestLoadDiscoversGameFolders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := strictpath.New(dir)

	gamePath := strictpath.New(dir + "/MyGame")
	gl, err := gamelayout.Load(gamePath, "MyGame", config.DefaultRetention())
	require.NoError(t, err)
	require.NoError(t, gl.Save())

	layout, err := Load(base)
	require.NoError(t, err)
	assert.Contains(t, layout.Games, "MyGame")
}

func TestPathForUsesEscapedFolderName(t *testing.T) {
	t.Parallel()

	base := strictpath.New("/backups")
	layout := &BackupLayout{Path: base, Games: map[string]*gamelayout.GameLayout{}}

	path := layout.PathFor("My:Game")
	assert.Equal(t, "/backups/My_Game", path.Render())
}

func TestOpenCreatesFreshLayoutWhenMissing(t *testing.T) {
	t.Parallel()

	base := strictpath.New(t.TempDir())
	layout := &BackupLayout{Path: base, Games: map[string]*gamelayout.GameLayout{}}

	gl, err := layout.Open("MyGame", config.DefaultRetention())
	require.NoError(t, err)
	assert.Equal(t, "MyGame", gl.Mapping.Name)
	assert.Contains(t, layout.Games, "MyGame")
}

func TestRestorableGameSetOnlyIncludesGamesWithBackups(t *testing.T) {
	t.Parallel()

	base := strictpath.New(t.TempDir())
	layout := &BackupLayout{Path: base, Games: map[string]*gamelayout.GameLayout{}}

	withBackup, err := layout.Open("HasBackup", config.DefaultRetention())
	require.NoError(t, err)

	withoutBackup, err := layout.Open("NoBackup", config.DefaultRetention())
	require.NoError(t, err)
	withoutBackup.Mapping.Backups = nil

	_ = withBackup

	set := layout.RestorableGameSet()
	assert.True(t, set["HasBackup"])
	assert.False(t, set["NoBackup"])
}
