package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileConstraintMatches(t *testing.T) {
	t.Parallel()

	anyStore := FileConstraint{OS: OSWindows}
	assert.True(t, anyStore.Matches(OSWindows, StoreSteam))
	assert.False(t, anyStore.Matches(OSLinux, StoreSteam))

	exact := FileConstraint{OS: OSLinux, Store: StoreGOG}
	assert.True(t, exact.Matches(OSLinux, StoreGOG))
	assert.False(t, exact.Matches(OSLinux, StoreSteam))
}

func TestFileEntryAllowed(t *testing.T) {
	t.Parallel()

	unconstrained := FileEntry{}
	assert.True(t, unconstrained.Allowed(OSWindows, StoreSteam))

	constrained := FileEntry{When: []FileConstraint{{OS: OSWindows}, {OS: OSMac}}}
	assert.True(t, constrained.Allowed(OSWindows, StoreSteam))
	assert.True(t, constrained.Allowed(OSMac, StoreSteam))
	assert.False(t, constrained.Allowed(OSLinux, StoreSteam))
}

func TestRegistryEntryAllowed(t *testing.T) {
	t.Parallel()

	unconstrained := RegistryEntry{}
	assert.True(t, unconstrained.Allowed(StoreSteam))

	constrained := RegistryEntry{When: []RegistryConstraint{{Store: StoreGOG}}}
	assert.True(t, constrained.Allowed(StoreGOG))
	assert.False(t, constrained.Allowed(StoreSteam))
}

func TestManifestNamesSorted(t *testing.T) {
	t.Parallel()

	m := Manifest{Games: map[string]Game{"Zeta": {}, "Alpha": {}, "Mid": {}}}
	assert.Equal(t, []string{"Alpha", "Mid", "Zeta"}, m.Names())
}

func TestManifestMergeOverlayWins(t *testing.T) {
	t.Parallel()

	base := Manifest{Games: map[string]Game{
		"MyGame": {Files: map[string]FileEntry{"<base>/save.dat": {}}},
		"Other":  {},
	}}
	overlay := Manifest{Games: map[string]Game{
		"MyGame": {Files: map[string]FileEntry{"<base>/new-save.dat": {}}},
	}}

	merged := base.Merge(overlay)
	require.Len(t, merged.Games, 2)
	_, hasOld := merged.Games["MyGame"].Files["<base>/save.dat"]
	assert.False(t, hasOld)
	_, hasNew := merged.Games["MyGame"].Files["<base>/new-save.dat"]
	assert.True(t, hasNew)
}

func TestLoadReadsYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	content := []byte("MyGame:\n  files:\n    <base>/save.dat: {}\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, m.Games, "MyGame")
}

func TestLoadMissingFileErrors(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
