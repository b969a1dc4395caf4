package orchestrator

import (
	"os"
	"path/filepath"
)

func writeFileForOrchestratorTest(native string, content string) error {
	if err := os.MkdirAll(filepath.Dir(native), 0o755); err != nil {
		return err
	}
	return os.WriteFile(native, []byte(content), 0o644)
}
