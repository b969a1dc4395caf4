package gamelayout

import (
	"os"
	"path/filepath"
	"time"
)

func writeFileForTest(native string, content string) error {
	if err := os.MkdirAll(filepath.Dir(native), 0o755); err != nil {
		return err
	}
	return os.WriteFile(native, []byte(content), 0o644)
}

func fixedTime() time.Time {
	return time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
}
