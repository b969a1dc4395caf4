// Package strictpath implements the normalized path value used throughout
// the backup engine: a raw string plus an optional basis for relative
// resolution, with a lazily computed and cached canonical form.
package strictpath

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// DriveKind distinguishes the three shapes a Path's leading component can
// take: POSIX root, a Windows drive/UNC/device prefix, or none (relative).
type DriveKind int

const (
	DriveNone DriveKind = iota
	DriveRoot
	DriveWindows
)

// Drive is the parsed form of a Path's leading component.
type Drive struct {
	Kind DriveKind
	// ID holds the normalized Windows prefix ("C:", `\\server\share`,
	// `\\?\C:`, `\\?\UNC\server\share`, `\\.\device`, `\\?\verbatim`).
	// Unused when Kind != DriveWindows.
	ID string
}

func (d Drive) equal(o Drive) bool {
	return d.Kind == o.Kind && d.ID == o.ID
}

// Error is a sentinel-comparable error kind returned by Access/Interpret.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrEmpty       Error = "path is empty"
	ErrRelative    Error = "path is relative and has no basis"
	ErrUnmappable  Error = "path placeholder could not be mapped"
	ErrUnsupported Error = "path drive kind is unsupported on this OS"
)

type canonicalState int

const (
	canonicalUnset canonicalState = iota
	canonicalValid
	canonicalUnsupported
	canonicalInaccessible
)

type canonicalCache struct {
	mu    sync.Mutex
	state canonicalState
	value string
}

// Path is a normalized path value. Equality is defined on (raw, basis) only;
// the canonical cache is a pure function of those two fields plus filesystem
// state observed at first access, and must never be consulted by Equal.
type Path struct {
	raw   string
	basis string
	cache *canonicalCache
}

// New creates a Path with no basis; relative raws will fail to Access.
func New(raw string) Path {
	return Path{raw: raw, cache: &canonicalCache{}}
}

// NewRelative creates a Path resolved against basis when raw is relative.
func NewRelative(raw, basis string) Path {
	return Path{raw: raw, basis: basis, cache: &canonicalCache{}}
}

// Raw returns the unmodified raw string the Path was constructed with.
func (p Path) Raw() string { return p.raw }

// Basis returns the resolution basis, if any.
func (p Path) Basis() string { return p.basis }

// Equal compares only (raw, basis), per the StrictPath invariant: the
// canonical cache must never participate in equality.
func (p Path) Equal(o Path) bool {
	return p.raw == o.raw && p.basis == o.basis
}

var placeholders = map[string]func() (string, bool){
	"<home>": func() (string, bool) {
		if xdg.Home != "" {
			return xdg.Home, true
		}
		return "", false
	},
	"<winAppData>": func() (string, bool) {
		if xdg.DataHome != "" {
			return xdg.DataHome, true
		}
		return "", false
	},
	"<winLocalAppData>": func() (string, bool) {
		if d := os.Getenv("LOCALAPPDATA"); d != "" {
			return d, true
		}
		return "", false
	},
	"<winDocuments>": func() (string, bool) {
		if home := xdg.Home; home != "" {
			return home + "/Documents", true
		}
		return "", false
	},
	"<winPublic>": func() (string, bool) {
		return "C:/Users/Public", true
	},
	"<winProgramData>": func() (string, bool) {
		return "C:/ProgramData", true
	},
	"<winDir>": func() (string, bool) {
		return "C:/Windows", true
	},
	"<xdgData>": func() (string, bool) {
		if xdg.DataHome != "" {
			return xdg.DataHome, true
		}
		return "", false
	},
	"<xdgConfig>": func() (string, bool) {
		if xdg.ConfigHome != "" {
			return xdg.ConfigHome, true
		}
		return "", false
	},
	"<osUserName>": nil, // handled specially: substitutes into the component, not a new root
	"<storeUserId>": func() (string, bool) {
		return "", false // resolved externally per-root; unresolved here falls back to basis
	},
}

var colonRe = regexp.MustCompile(`:`)

// analyze parses raw into (Drive, parts), expanding placeholders, `~`, and
// embedded OS-username substitutions, and escaping stray colons in non-leading
// components so they can never be mistaken for a Windows drive letter.
func (p Path) analyze() (Drive, []string) {
	raw := strings.TrimSpace(p.raw)
	if raw == "" {
		return Drive{}, nil
	}

	// UNC / device / verbatim prefixes consume the whole leading run of
	// components themselves, so they're peeled off before the generic split.
	if isUNCPrefix(raw) {
		drive := Drive{Kind: DriveWindows, ID: uncID(raw)}
		var parts []string
		for _, rc := range uncRemainder(raw) {
			parts = appendComponent(parts, rc)
		}
		return drive, parts
	}

	rawComponents := splitRawComponents(raw)

	var drive Drive
	var parts []string

	for i, comp := range rawComponents {
		if i == 0 {
			switch {
			case isWindowsDriveLetter(comp):
				drive = Drive{Kind: DriveWindows, ID: strings.ToUpper(comp[:1]) + ":"}
				continue
			case comp == "/":
				drive = Drive{Kind: DriveRoot}
				continue
			case comp == "~":
				if home, ok := placeholders["<home>"](); ok {
					drive, parts = New(home).analyze()
				} else if p.basis != "" {
					drive, parts = New(p.basis).analyze()
				}
				continue
			case isPlaceholder(comp):
				if fn := placeholders[comp]; fn != nil {
					if resolved, ok := fn(); ok {
						drive, parts = New(resolved).analyze()
						continue
					}
				}
				if p.basis != "" {
					drive, parts = New(p.basis).analyze()
				}
				continue
			}
		}

		parts = appendComponent(parts, comp)
	}

	return drive, parts
}

func appendComponent(parts []string, comp string) []string {
	if comp == "<osUserName>" {
		return append(parts, currentOSUserName())
	}
	if comp == "" || comp == "." {
		return parts
	}
	if comp == ".." {
		if len(parts) > 0 {
			parts = parts[:len(parts)-1]
		}
		return parts
	}

	comp = colonRe.ReplaceAllString(comp, "_")

	if runtime.GOOS != "windows" && strings.Contains(comp, `\`) {
		for _, sub := range strings.Split(comp, `\`) {
			if strings.TrimSpace(sub) != "" {
				parts = append(parts, sub)
			}
		}
		return parts
	}

	return append(parts, comp)
}

func isPlaceholder(comp string) bool {
	_, ok := placeholders[comp]
	return ok
}

func isWindowsDriveLetter(comp string) bool {
	return len(comp) == 2 && comp[1] == ':' && isASCIILetter(comp[0])
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isUNCPrefix(raw string) bool {
	return strings.HasPrefix(raw, `\\`) || strings.HasPrefix(raw, `//`)
}

// uncID extracts the normalized UNC/verbatim/device prefix from a raw path.
func uncID(raw string) string {
	norm := strings.ReplaceAll(raw, "/", `\`)
	segs := strings.Split(strings.TrimPrefix(norm, `\\`), `\`)
	switch {
	case len(segs) >= 2 && segs[0] == "?" && len(segs) >= 3 && strings.EqualFold(segs[1], "UNC"):
		return fmt.Sprintf(`\\?\UNC\%s\%s`, segs[2], valueOr(segs, 3, ""))
	case len(segs) >= 2 && segs[0] == "?":
		if isWindowsDriveLetter(segs[1] + ":") {
			return fmt.Sprintf(`\\?\%s`, strings.ToUpper(segs[1][:1])+":")
		}
		return fmt.Sprintf(`\\?\%s`, segs[1])
	case len(segs) >= 2 && segs[0] == ".":
		return fmt.Sprintf(`\\.\%s`, segs[1])
	default:
		return fmt.Sprintf(`\\%s\%s`, valueOr(segs, 0, ""), valueOr(segs, 1, ""))
	}
}

func uncRemainder(raw string) []string {
	norm := strings.ReplaceAll(raw, "/", `\`)
	segs := strings.Split(strings.TrimPrefix(norm, `\\`), `\`)
	skip := 2
	if len(segs) >= 2 && (segs[0] == "?" || segs[0] == ".") {
		if len(segs) >= 2 && segs[0] == "?" && strings.EqualFold(valueOr(segs, 1, ""), "UNC") {
			skip = 4
		} else {
			skip = 2
		}
	}
	if skip >= len(segs) {
		return nil
	}
	return segs[skip:]
}

func valueOr(ss []string, i int, def string) string {
	if i < len(ss) {
		return ss[i]
	}
	return def
}

// splitRawComponents splits a raw path on both separators, collapsing runs,
// keeping a leading slash marker for POSIX roots.
func splitRawComponents(raw string) []string {
	norm := strings.ReplaceAll(raw, `\`, "/")
	var out []string
	if strings.HasPrefix(norm, "/") {
		out = append(out, "/")
	}
	for _, c := range strings.Split(norm, "/") {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

var osUsername string
var osUsernameOnce sync.Once

func currentOSUserName() string {
	osUsernameOnce.Do(func() {
		if u := os.Getenv("USER"); u != "" {
			osUsername = u
		} else if u := os.Getenv("USERNAME"); u != "" {
			osUsername = u
		}
	})
	return osUsername
}

// Display renders (drive, parts) with forward slashes, independent of OS.
func (p Path) display() string {
	if strings.TrimSpace(p.raw) == "" {
		return ""
	}
	drive, parts := p.analyze()
	switch drive.Kind {
	case DriveRoot:
		return "/" + strings.Join(parts, "/")
	case DriveWindows:
		return drive.ID + "/" + strings.Join(parts, "/")
	default:
		return strings.Join(parts, "/")
	}
}

// AccessWindows assembles a Windows-native absolute path (backslash separated).
func (p Path) AccessWindows() (string, error) {
	if strings.TrimSpace(p.raw) == "" {
		return "", ErrEmpty
	}
	drive, parts := p.analyze()
	switch drive.Kind {
	case DriveRoot:
		return "", ErrUnsupported
	case DriveWindows:
		return drive.ID + `\` + strings.Join(parts, `\`), nil
	default:
		if p.basis == "" {
			return "", ErrRelative
		}
		return p.basis + `\` + strings.Join(parts, `\`), nil
	}
}

// AccessNonWindows assembles a POSIX-native absolute path (forward slash).
func (p Path) AccessNonWindows() (string, error) {
	if strings.TrimSpace(p.raw) == "" {
		return "", ErrEmpty
	}
	drive, parts := p.analyze()
	switch drive.Kind {
	case DriveRoot:
		return "/" + strings.Join(parts, "/"), nil
	case DriveWindows:
		return "", ErrUnsupported
	default:
		if p.basis == "" {
			return "", ErrRelative
		}
		return p.basis + "/" + strings.Join(parts, "/"), nil
	}
}

// Access assembles the native-form absolute path for the host OS.
func (p Path) Access() (string, error) {
	if runtime.GOOS == "windows" {
		return p.AccessWindows()
	}
	return p.AccessNonWindows()
}

func (p Path) canonical() (canonicalState, string) {
	p.cache.mu.Lock()
	defer p.cache.mu.Unlock()

	if p.cache.state != canonicalUnset {
		return p.cache.state, p.cache.value
	}

	access, err := p.Access()
	if err != nil {
		p.cache.state = canonicalUnsupported
		return p.cache.state, ""
	}

	canon, err := canonicalizeOS(access)
	if err != nil {
		p.cache.state = canonicalInaccessible
		return p.cache.state, ""
	}

	p.cache.state = canonicalValid
	p.cache.value = canon
	return p.cache.state, canon
}

// Interpret returns the cached canonical form if the file exists, else the
// result of Access.
func (p Path) Interpret() (string, error) {
	state, value := p.canonical()
	switch state {
	case canonicalValid:
		return New(value).Access()
	case canonicalUnsupported:
		return p.Access()
	default: // canonicalInaccessible
		return p.Access()
	}
}

// Render returns the cached canonical form with forward slashes if the file
// exists, else the display form.
func (p Path) Render() string {
	state, value := p.canonical()
	if state == canonicalValid {
		return New(value).display()
	}
	return p.display()
}

// SplitDrive separates p into its drive label ("", "/", "C:", or a UNC/
// verbatim/device prefix) and the remaining forward-slash-joined path
// components, for building a per-drive backup folder layout.
func (p Path) SplitDrive() (drive string, remainder string) {
	d, parts := p.analyze()
	switch d.Kind {
	case DriveRoot:
		drive = "/"
	case DriveWindows:
		drive = d.ID
	default:
		drive = ""
	}
	return drive, strings.Join(parts, "/")
}

// IsPrefixOf reports whether p is a strict (non-equal-length), component-wise
// prefix of other, with matching drive kind/id.
func (p Path) IsPrefixOf(other Path) bool {
	usDrive, usParts := p.analyze()
	themDrive, themParts := other.analyze()

	if !usDrive.equal(themDrive) {
		return false
	}
	if len(usParts) >= len(themParts) {
		return false
	}
	for i, part := range usParts {
		if themParts[i] != part {
			return false
		}
	}
	return true
}

// NearestPrefix returns the element of others that is the longest strict
// prefix of p, or the zero Path and false if none qualifies.
func (p Path) NearestPrefix(others []Path) (Path, bool) {
	usDrive, usParts := p.analyze()
	usCount := len(usParts)

	var nearest Path
	nearestLen := -1
	found := false

	for _, other := range others {
		themDrive, themParts := other.analyze()
		themLen := len(themParts)

		if !usDrive.equal(themDrive) || usCount <= themLen {
			continue
		}
		match := true
		for i, part := range themParts {
			if usParts[i] != part {
				match = false
				break
			}
		}
		if match && themLen > nearestLen {
			nearest = other
			nearestLen = themLen
			found = true
		}
	}
	return nearest, found
}

// Glob expands p (which may contain glob metacharacters), requiring a
// literal separator and following symlinks. Case sensitivity follows the
// host OS's own filesystem semantics (Windows/macOS paths resolve
// case-insensitively at the syscall level; Linux does not), since
// doublestar.FilepathGlob delegates path lookups to the OS.
func (p Path) Glob() []Path {
	rendered := strings.TrimRight(p.Render(), "/\\")
	pattern := filepath.FromSlash(rendered)

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil
	}

	out := make([]Path, 0, len(matches))
	for _, m := range matches {
		out = append(out, New(filepath.ToSlash(m)))
	}
	return out
}

// SameContent streams 1 KiB blocks from both files and compares them,
// returning false on any IO error.
func (p Path) SameContent(other Path) bool {
	ok, err := p.trySameContent(other)
	return err == nil && ok
}

func (p Path) trySameContent(other Path) (bool, error) {
	a, err := p.Open()
	if err != nil {
		return false, err
	}
	defer a.Close()
	b, err := other.Open()
	if err != nil {
		return false, err
	}
	defer b.Close()

	ra := bufio.NewReaderSize(a, 1024)
	rb := bufio.NewReaderSize(b, 1024)

	bufA := make([]byte, 1024)
	bufB := make([]byte, 1024)
	for {
		na, errA := ra.Read(bufA)
		nb, errB := rb.Read(bufB)
		if na != nb {
			return false, nil
		}
		for i := 0; i < na; i++ {
			if bufA[i] != bufB[i] {
				return false, nil
			}
		}
		if errA == io.EOF || errB == io.EOF {
			break
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
		if na == 0 {
			break
		}
	}
	return true, nil
}

// Open opens the file at the interpreted path for reading.
func (p Path) Open() (*os.File, error) {
	native, err := p.Interpret()
	if err != nil {
		return nil, errors.Wrap(err, "interpret path")
	}
	return os.Open(native)
}

// Create creates (or truncates) the file at the interpreted path.
func (p Path) Create() (*os.File, error) {
	native, err := p.Interpret()
	if err != nil {
		return nil, errors.Wrap(err, "interpret path")
	}
	return os.Create(native)
}

// Stat stats the interpreted path.
func (p Path) Stat() (os.FileInfo, error) {
	native, err := p.Interpret()
	if err != nil {
		return nil, err
	}
	return os.Stat(native)
}

// Exists reports whether the interpreted path refers to an existing file or
// directory.
func (p Path) Exists() bool {
	_, err := p.Stat()
	return err == nil
}

// IsDir reports whether the interpreted path is a directory.
func (p Path) IsDir() bool {
	info, err := p.Stat()
	return err == nil && info.IsDir()
}

// SHA1 computes the hex-encoded SHA-1 digest of the file's contents.
func (p Path) SHA1() (string, error) {
	f, err := p.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Size returns the size in bytes of the interpreted path.
func (p Path) Size() (int64, error) {
	info, err := p.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// MTime returns the modification time of the interpreted path.
func (p Path) MTime() (time.Time, error) {
	info, err := p.Stat()
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// SetMTime sets the modification time (and access time) of the interpreted
// path.
func (p Path) SetMTime(mtime time.Time) error {
	native, err := p.Interpret()
	if err != nil {
		return err
	}
	return os.Chtimes(native, mtime, mtime)
}

// zipEpoch is the earliest timestamp the zip format can represent.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// MTimeZip returns the modification time clamped to the zip epoch when the
// real mtime predates 1980, since zip cannot represent earlier dates.
func (p Path) MTimeZip() (time.Time, error) {
	mtime, err := p.MTime()
	if err != nil {
		return time.Time{}, err
	}
	return ClampToZipEpoch(mtime), nil
}

// ClampToZipEpoch rounds t into the zip format's representable range: years
// before 1980 clamp to the zip epoch (1980-01-01T00:00:00Z); zip's 2-second
// resolution is respected by callers via archive/zip itself.
func ClampToZipEpoch(t time.Time) time.Time {
	utc := t.UTC()
	if utc.Year() < 1980 {
		return zipEpoch
	}
	return utc
}

// SetMTimeZip sets the interpreted path's mtime from a zip-format timestamp.
func (p Path) SetMTimeZip(mtime time.Time) error {
	return p.SetMTime(mtime.UTC())
}

