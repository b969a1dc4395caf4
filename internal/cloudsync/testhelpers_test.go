package cloudsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeScriptForTest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-rclone.sh")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}
