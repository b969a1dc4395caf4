package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vaultkeeper/internal/strictpath"
)

func TestResolveBackupDirection(t *testing.T) {
	t.Parallel()

	redirects := []RedirectConfig{
		{Kind: RedirectBackup, Source: "/old/drive/saves", Target: "/new/drive/saves"},
	}

	resolved := Resolve(redirects, strictpath.New("/old/drive/saves/slot1.dat"), false)
	assert.Equal(t, "/new/drive/saves/slot1.dat", resolved.Render())
}

func TestResolveRestoreDirectionIgnoresBackupOnlyRedirect(t *testing.T) {
	t.Parallel()

	redirects := []RedirectConfig{
		{Kind: RedirectBackup, Source: "/old/drive/saves", Target: "/new/drive/saves"},
	}

	// A backup-only redirect does not apply when restoring.
	resolved := Resolve(redirects, strictpath.New("/new/drive/saves/slot1.dat"), true)
	assert.Equal(t, "/new/drive/saves/slot1.dat", resolved.Render())
}

func TestResolveBidirectionalAppliesBothWays(t *testing.T) {
	t.Parallel()

	redirects := []RedirectConfig{
		{Kind: RedirectBidirectional, Source: "/old/drive/saves", Target: "/new/drive/saves"},
	}

	forBackup := Resolve(redirects, strictpath.New("/old/drive/saves/slot1.dat"), false)
	assert.Equal(t, "/new/drive/saves/slot1.dat", forBackup.Render())

	forRestore := Resolve(redirects, strictpath.New("/new/drive/saves/slot1.dat"), true)
	assert.Equal(t, "/old/drive/saves/slot1.dat", forRestore.Render())
}

func TestResolveNonMatchingPathUnchanged(t *testing.T) {
	t.Parallel()

	redirects := []RedirectConfig{
		{Kind: RedirectBackup, Source: "/old/drive/saves", Target: "/new/drive/saves"},
	}

	resolved := Resolve(redirects, strictpath.New("/unrelated/path.dat"), false)
	assert.Equal(t, "/unrelated/path.dat", resolved.Render())
}
