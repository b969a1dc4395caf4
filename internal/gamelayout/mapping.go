// Package gamelayout is the core of the engine: the per-game mapping
// sidecar, the need/plan/execute backup pipeline, and restore.
package gamelayout

import (
	"bytes"
	"encoding/base64"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"vaultkeeper/internal/strictpath"
)

const safeChar = "_"

// escapeFolderName replaces every filename-unsafe character (and a leading
// or trailing dot, which Explorer/dotfile conventions mishandle) with "_".
func escapeFolderName(name string) string {
	if name == "" {
		return name
	}
	escaped := []rune(name)
	if escaped[0] == '.' {
		escaped[0] = '_'
	}
	if escaped[len(escaped)-1] == '.' {
		escaped[len(escaped)-1] = '_'
	}
	s := string(escaped)
	for _, c := range []string{`\`, "/", ":", "*", "?", `"`, "<", ">", "|", "\x00"} {
		s = strings.ReplaceAll(s, c, safeChar)
	}
	return s
}

// renamedFolderName is the fallback used when escaping a game name yields
// nothing but underscores (e.g. a name that's all slashes).
func renamedFolderName(name string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(name))
	encoded = strings.ReplaceAll(encoded, "/", safeChar)
	return "ludusavi-renamed-" + encoded
}

// FolderName is the on-disk folder name a game's backups live under:
// its escaped name, falling back to a base64-encoded form when escaping
// collapses it to nothing but underscores.
func FolderName(name string) string {
	escaped := escapeFolderName(name)
	if strings.Trim(escaped, safeChar) == "" {
		return renamedFolderName(name)
	}
	return escaped
}

// BackupOmission records what a differential backup deliberately left out
// relative to the full backup it's attached to.
type BackupOmission struct {
	Files    []string `yaml:"files,omitempty"`
	Registry bool     `yaml:"registry,omitempty"`
}

func (o BackupOmission) omitsFile(renderedPath string) bool {
	for _, f := range o.Files {
		if f == renderedPath {
			return true
		}
	}
	return false
}

// DifferentialBackup is a partial backup attached to a FullBackup, holding
// only what changed since that full.
type DifferentialBackup struct {
	Name string          `yaml:"name"`
	When *time.Time      `yaml:"when,omitempty"`
	Omit BackupOmission  `yaml:"omit,omitempty"`
}

func (d DifferentialBackup) label() string {
	if d.When == nil {
		return d.Name
	}
	return d.When.Local().Format("2006-01-02T15:04:05")
}

func (d DifferentialBackup) format() BackupFormat {
	if strings.HasSuffix(d.Name, ".zip") {
		return FormatZip
	}
	return FormatSimple
}

// FullBackup is a complete backup, optionally with a chain of
// differentials layered on top.
type FullBackup struct {
	Name     string                `yaml:"name"`
	When     *time.Time            `yaml:"when,omitempty"`
	Children []DifferentialBackup  `yaml:"children,omitempty"`
}

func (f FullBackup) label() string {
	if f.When == nil {
		return f.Name
	}
	return f.When.Local().Format("2006-01-02T15:04:05")
}

func (f FullBackup) format() BackupFormat {
	if strings.HasSuffix(f.Name, ".zip") {
		return FormatZip
	}
	return FormatSimple
}

// BackupFormat mirrors config.BackupFormat but stays local to avoid this
// package depending on config for a two-value enum.
type BackupFormat int

const (
	FormatSimple BackupFormat = iota
	FormatZip
)

// BackupKind distinguishes a full backup from a differential one.
type BackupKind int

const (
	KindFull BackupKind = iota
	KindDifferential
)

// Backup is either a FullBackup or a DifferentialBackup, flattened for
// callers that just want "the backup", regardless of kind.
type Backup struct {
	Kind         BackupKind
	Full         *FullBackup
	Differential *DifferentialBackup
}

func (b Backup) Name() string {
	if b.Kind == KindFull {
		return b.Full.Name
	}
	return b.Differential.Name
}

func (b Backup) Label() string {
	if b.Kind == KindFull {
		return b.Full.label()
	}
	return b.Differential.label()
}

func (b Backup) Format() BackupFormat {
	if b.Kind == KindFull {
		return b.Full.format()
	}
	return b.Differential.format()
}

// IndividualMapping is the per-game sidecar: the game's canonical name, the
// drive-letter-to-folder-name assignments, and the chain of backups.
type IndividualMapping struct {
	Name    string            `yaml:"name"`
	Drives  map[string]string `yaml:"drives,omitempty"`
	Backups []FullBackup      `yaml:"backups"`
}

// NewMapping builds a fresh mapping for a game that has never been backed
// up, pre-seeded with the "." full backup slot the simple/retention=1
// format relies on.
func NewMapping(name string) IndividualMapping {
	return IndividualMapping{
		Name:    name,
		Backups: []FullBackup{{Name: "."}},
	}
}

func (m IndividualMapping) reversedDrives() map[string]string {
	out := make(map[string]string, len(m.Drives))
	for k, v := range m.Drives {
		out[v] = k
	}
	return out
}

func newDriveFolderName(drive string) string {
	if drive == "" {
		return "drive-0"
	}
	return "drive-" + escapeFolderName(strings.ReplaceAll(drive, ":", ""))
}

// DriveFolderName returns the stable per-drive folder name for drive,
// assigning and recording a new one the first time it's seen.
func (m *IndividualMapping) DriveFolderName(drive string) string {
	if mapped, ok := m.reversedDrives()[drive]; ok {
		return mapped
	}
	key := newDriveFolderName(drive)
	if m.Drives == nil {
		m.Drives = map[string]string{}
	}
	m.Drives[key] = drive
	return key
}

func (m IndividualMapping) latestBackup() (*FullBackup, *DifferentialBackup) {
	if len(m.Backups) == 0 {
		return nil, nil
	}
	full := &m.Backups[len(m.Backups)-1]
	if len(full.Children) == 0 {
		return full, nil
	}
	return full, &full.Children[len(full.Children)-1]
}

func (m IndividualMapping) latestFullBackup() *FullBackup {
	if len(m.Backups) == 0 {
		return nil
	}
	return &m.Backups[len(m.Backups)-1]
}

func (m IndividualMapping) hasBackup(name string) bool {
	for _, full := range m.Backups {
		if full.Name == name {
			return true
		}
		for _, diff := range full.Children {
			if diff.Name == name {
				return true
			}
		}
	}
	return false
}

// FindByID resolves "latest" (empty name) or a specific backup name to its
// (full, differential) pair; differential is nil when name names a full.
func (m IndividualMapping) FindByID(name string) (*FullBackup, *DifferentialBackup, bool) {
	if name == "" {
		full, diff := m.latestBackup()
		return full, diff, full != nil
	}
	for i := range m.Backups {
		full := &m.Backups[i]
		if full.Name == name {
			return full, nil, true
		}
		for j := range full.Children {
			if full.Children[j].Name == name {
				return full, &full.Children[j], true
			}
		}
	}
	return nil, nil, false
}

// RestorableBackupsFlattened lists every backup (full and differential) in
// chronological order, for display.
func (m IndividualMapping) RestorableBackupsFlattened() []Backup {
	var out []Backup
	for i := range m.Backups {
		full := &m.Backups[i]
		out = append(out, Backup{Kind: KindFull, Full: full})
		for j := range full.Children {
			out = append(out, Backup{Kind: KindDifferential, Differential: &full.Children[j]})
		}
	}
	return out
}

func mappingFile(base strictpath.Path) strictpath.Path {
	return strictpath.New(base.Render() + "/mapping.yaml")
}

// LoadMapping reads the sidecar at {base}/mapping.yaml, or returns a fresh
// mapping for name if it doesn't exist yet. Legacy sidecars whose "." full
// backup has no timestamp are given one from the file's own mtime.
func LoadMapping(base strictpath.Path, name string) (IndividualMapping, error) {
	file := mappingFile(base)
	if !file.Exists() {
		return NewMapping(name), nil
	}

	native, err := file.Interpret()
	if err != nil {
		return IndividualMapping{}, err
	}
	data, err := os.ReadFile(native)
	if err != nil {
		return IndividualMapping{}, err
	}

	var m IndividualMapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return IndividualMapping{}, err
	}

	if mtime, err := file.MTime(); err == nil {
		for i := range m.Backups {
			if m.Backups[i].Name == "." && m.Backups[i].When == nil {
				t := mtime
				m.Backups[i].When = &t
			}
		}
	}

	return m, nil
}

// Save writes the mapping as YAML, but only if its content differs from
// what's already on disk.
func Save(base strictpath.Path, m IndividualMapping) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	file := mappingFile(base)
	if nativeFile, err := file.Interpret(); err == nil {
		if existing, err := os.ReadFile(nativeFile); err == nil && bytes.Equal(existing, data) {
			return nil
		}
	}

	nativeBase, err := base.Interpret()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(nativeBase, 0o755); err != nil {
		return err
	}
	nativeFile, err := file.Interpret()
	if err != nil {
		return err
	}
	return os.WriteFile(nativeFile, data, 0o644)
}

// IrrelevantParents lists every drive-* and backup-* entry under base that
// the (now-updated) mapping no longer references, plus registry.yaml at
// the game-folder root when no "."-named backup exists.
func IrrelevantParents(base strictpath.Path, m IndividualMapping) []strictpath.Path {
	relevant := map[string]bool{}
	for _, full := range m.Backups {
		relevant[full.Name] = true
		for _, diff := range full.Children {
			relevant[diff.Name] = true
		}
	}

	var irrelevant []strictpath.Path
	hasDot := m.hasBackup(".")
	if !hasDot {
		irrelevant = append(irrelevant, strictpath.New(base.Render()+"/registry.yaml"))
	}

	nativeBase, err := base.Interpret()
	if err != nil {
		return irrelevant
	}
	entries, err := os.ReadDir(nativeBase)
	if err != nil {
		return irrelevant
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "drive-") && !hasDot {
			irrelevant = append(irrelevant, strictpath.New(base.Render()+"/"+name))
		}
		if strings.HasPrefix(name, "backup-") && !relevant[name] {
			irrelevant = append(irrelevant, strictpath.New(base.Render()+"/"+name))
		}
	}
	return irrelevant
}
