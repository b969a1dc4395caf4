// Package backuplayout owns the top-level backup directory: the fleet of
// per-game GameLayouts living one level below it, discovered by reading
// each subfolder's mapping.yaml.
package backuplayout

import (
	"os"
	"sort"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/gamelayout"
	"vaultkeeper/internal/strictpath"
)

// BackupLayout is the root backup directory: one GameLayout per
// subdirectory, keyed by the game's canonical manifest name.
type BackupLayout struct {
	Path  strictpath.Path
	Games map[string]*gamelayout.GameLayout
}

// Load scans base for existing per-game folders, opening a GameLayout for
// each one found. Folders without a mapping.yaml, or whose mapping doesn't
// parse, are skipped.
func Load(base strictpath.Path) (*BackupLayout, error) {
	layout := &BackupLayout{Path: base, Games: map[string]*gamelayout.GameLayout{}}

	native, err := base.Interpret()
	if err != nil {
		if os.IsNotExist(err) {
			return layout, nil
		}
		return layout, nil
	}
	entries, err := os.ReadDir(native)
	if err != nil {
		return layout, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sep := string(os.PathSeparator)
		if _, err := os.Stat(native + sep + entry.Name() + sep + "mapping.yaml"); err != nil {
			continue
		}
		gameDir := strictpath.New(base.Render() + "/" + entry.Name())
		gl, err := gamelayout.Load(gameDir, entry.Name(), config.DefaultRetention())
		if err != nil {
			continue
		}
		if gl.Mapping.Name == "" {
			continue
		}
		layout.Games[gl.Mapping.Name] = gl
	}

	return layout, nil
}

// FolderNameFor returns the on-disk folder name for a game, matching the
// escaping rule its GameLayout's mapping sidecar uses: the escaped name,
// falling back to a base64-encoded form when escaping collapses it to
// nothing recognizable.
func FolderNameFor(gameName string) string {
	return gamelayout.FolderName(gameName)
}

// PathFor returns the strictpath.Path for a game's backup folder under
// base, without requiring it already exist.
func (b *BackupLayout) PathFor(gameName string) strictpath.Path {
	return strictpath.New(b.Path.Render() + "/" + FolderNameFor(gameName))
}

// Open returns the existing GameLayout for gameName, or creates a fresh one
// rooted at its folder if none exists yet.
func (b *BackupLayout) Open(gameName string, retention config.Retention) (*gamelayout.GameLayout, error) {
	if gl, ok := b.Games[gameName]; ok {
		gl.Retention = retention
		return gl, nil
	}
	gl, err := gamelayout.Load(b.PathFor(gameName), gameName, retention)
	if err != nil {
		return nil, err
	}
	b.Games[gameName] = gl
	return gl, nil
}

// RestorableGameSet returns the canonical names of every game this backup
// directory holds at least one restorable backup for.
func (b *BackupLayout) RestorableGameSet() map[string]bool {
	set := make(map[string]bool, len(b.Games))
	for name, gl := range b.Games {
		if len(gl.Mapping.Backups) > 0 {
			set[name] = true
		}
	}
	return set
}

// Names returns every game name currently known to this layout, sorted.
func (b *BackupLayout) Names() []string {
	out := make([]string, 0, len(b.Games))
	for name := range b.Games {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
