package gamelayout

import (
	"os"
	"path/filepath"

	"vaultkeeper/internal/strictpath"
)

func pathToNative(rendered string) (string, error) {
	return strictpath.New(rendered).Interpret()
}

func filepathToSlash(p string) string {
	return filepath.ToSlash(p)
}

// walkFiles visits every regular file under root, recursively, calling fn
// with its native path and size. Best-effort: read errors on individual
// entries are skipped rather than aborting the walk.
func walkFiles(root string, fn func(path string, size int64)) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		fn(path, info.Size())
		return nil
	})
}
