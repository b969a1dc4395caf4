package strictpath

import (
	"os"
	"path/filepath"
)

// canonicalizeOS resolves a native-form absolute path to its canonical form
// (symlinks resolved) if it currently exists on disk.
func canonicalizeOS(native string) (string, error) {
	if _, err := os.Lstat(native); err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(native)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
