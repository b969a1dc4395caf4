package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/regpath"
)

func TestToggledPathsDefaultEnabled(t *testing.T) {
	t.Parallel()

	toggles := ToggledPaths{}
	assert.False(t, toggles.IsIgnored("MyGame", "/saves/slot1.dat"))
}

func TestToggledPathsEnableDisable(t *testing.T) {
	t.Parallel()

	toggles := ToggledPaths{}
	toggles.Enable("MyGame", "/saves/slot1.dat", false)
	assert.True(t, toggles.IsIgnored("MyGame", "/saves/slot1.dat"))

	// Re-enabling (the default) prunes the entry back out entirely.
	toggles.Enable("MyGame", "/saves/slot1.dat", true)
	assert.False(t, toggles.IsIgnored("MyGame", "/saves/slot1.dat"))
	_, hasGame := toggles["MyGame"]
	assert.False(t, hasGame)
}

func TestToggledRegistryEntryPrune(t *testing.T) {
	t.Parallel()

	entry := ToggledRegistryEntry{}
	entry.enableKey(false)
	entry.enableValue("Volume", false)
	entry.prune()

	// Value matches the key-level toggle, so it's redundant and pruned.
	_, ok := entry.ValueEnabled("Volume")
	assert.False(t, ok)

	keyEnabled, ok := entry.KeyEnabled()
	require.True(t, ok)
	assert.False(t, keyEnabled)
}

func TestToggledRegistryIsIgnored(t *testing.T) {
	t.Parallel()

	toggles := ToggledRegistry{}
	key := regpath.NewItem(`HKCU\Software\MyGame`)

	toggles.Enable("MyGame", key, nil, false)
	assert.True(t, toggles.IsIgnored("MyGame", key, nil))

	volume := "Volume"
	toggles.Enable("MyGame", key, &volume, true)
	assert.False(t, toggles.IsIgnored("MyGame", key, &volume))
	assert.True(t, toggles.IsIgnored("MyGame", key, nil))
}

func TestToggledRegistryEnableFullyPrunesEmptyEntries(t *testing.T) {
	t.Parallel()

	toggles := ToggledRegistry{}
	key := regpath.NewItem(`HKCU\Software\MyGame`)

	toggles.Enable("MyGame", key, nil, false)
	toggles.Enable("MyGame", key, nil, true)

	_, hasGame := toggles["MyGame"]
	assert.False(t, hasGame)
}
