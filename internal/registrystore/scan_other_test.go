//go:build !windows

package registrystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultkeeper/internal/regpath"
)

func TestScanIsInertOffWindows(t *testing.T) {
	t.Parallel()

	scanned, err := Scan("MyGame", regpath.NewItem(`HKCU\Software\MyGame`), nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, scanned)
}

func TestRestoreIsInertOffWindows(t *testing.T) {
	t.Parallel()

	err := Restore(Hives{"HKEY_CURRENT_USER": Keys{}})
	assert.NoError(t, err)
}

func TestIncorporateIsInertOffWindows(t *testing.T) {
	t.Parallel()

	hives, err := Incorporate([]Scanned{{Path: regpath.NewItem(`HKCU\Software\MyGame`)}})
	require.NoError(t, err)
	assert.Empty(t, hives)
}
