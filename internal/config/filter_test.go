package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vaultkeeper/internal/regpath"
	"vaultkeeper/internal/strictpath"
)

func TestBackupFilterIsPathIgnored(t *testing.T) {
	t.Parallel()

	f := &BackupFilter{IgnoredPaths: []string{"/home/user/saves/logs"}}

	assert.True(t, f.IsPathIgnored(strictpath.New("/home/user/saves/logs")))
	assert.True(t, f.IsPathIgnored(strictpath.New("/home/user/saves/logs/debug.txt")))
	assert.True(t, f.IsPathIgnored(strictpath.New("/HOME/USER/SAVES/LOGS/DEBUG.TXT")))
	assert.False(t, f.IsPathIgnored(strictpath.New("/home/user/saves/slot1.dat")))
}

func TestBackupFilterNoIgnoredPaths(t *testing.T) {
	t.Parallel()

	f := &BackupFilter{}
	assert.False(t, f.IsPathIgnored(strictpath.New("/anything")))
}

func TestBackupFilterIsRegistryIgnored(t *testing.T) {
	t.Parallel()

	f := &BackupFilter{IgnoredRegistry: []string{`HKCU\Software\MyGame\Telemetry`}}

	assert.True(t, f.IsRegistryIgnored(regpath.NewItem(`HKCU\Software\MyGame\Telemetry`)))
	assert.True(t, f.IsRegistryIgnored(regpath.NewItem(`HKCU\Software\MyGame\Telemetry\Session`)))
	assert.False(t, f.IsRegistryIgnored(regpath.NewItem(`HKCU\Software\MyGame\Settings`)))
}
