package config

import "vaultkeeper/internal/strictpath"

// RedirectKind controls which direction(s) a RedirectConfig applies to.
type RedirectKind string

const (
	RedirectBackup        RedirectKind = "backup"
	RedirectRestore       RedirectKind = "restore"
	RedirectBidirectional RedirectKind = "bidirectional"
)

// RedirectConfig remaps one path to another during backup and/or restore,
// e.g. because a game was reinstalled to a new drive.
type RedirectConfig struct {
	Kind   RedirectKind `yaml:"kind" mapstructure:"kind"`
	Source string       `yaml:"source" mapstructure:"source"`
	Target string       `yaml:"target" mapstructure:"target"`
}

// AppliesToBackup reports whether this redirect should be applied while
// scanning for a backup (source -> target direction).
func (r RedirectConfig) AppliesToBackup() bool {
	return r.Kind == RedirectBackup || r.Kind == RedirectBidirectional
}

// AppliesToRestore reports whether this redirect should be applied while
// restoring (target -> source direction, the inverse of backup).
func (r RedirectConfig) AppliesToRestore() bool {
	return r.Kind == RedirectRestore || r.Kind == RedirectBidirectional
}

// Resolve rewrites path if it falls under a redirect's source (for backup
// direction) or target (for restore direction, since restoring un-does the
// redirect). Redirects are tried in order and the first match wins.
func Resolve(redirects []RedirectConfig, path strictpath.Path, forRestore bool) strictpath.Path {
	for _, r := range redirects {
		if forRestore && !r.AppliesToRestore() {
			continue
		}
		if !forRestore && !r.AppliesToBackup() {
			continue
		}

		from, to := strictpath.New(r.Source), strictpath.New(r.Target)
		if forRestore {
			from, to = to, from
		}

		if rewritten, ok := rebase(path, from, to); ok {
			return rewritten
		}
	}
	return path
}

func rebase(path, from, to strictpath.Path) (strictpath.Path, bool) {
	if path.Equal(from) {
		return to, true
	}
	if !from.IsPrefixOf(path) {
		return path, false
	}
	suffix := path.Render()[len(from.Render()):]
	return strictpath.New(to.Render() + suffix), true
}
