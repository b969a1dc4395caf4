package reporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"vaultkeeper/internal/changekind"
)

func changeSymbol(c changekind.ScanChange) string {
	switch c {
	case changekind.Same:
		return "="
	case changekind.Different:
		return "~"
	case changekind.New:
		return "+"
	case changekind.Removed:
		return "-"
	default:
		return "?"
	}
}

func sortedKeys(m map[string]FileEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedRegistryKeys(m map[string]RegistryEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedGameNames(m map[string]GameReport) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Standard renders r as a human-readable summary: one header line per
// game, indented file/registry lines underneath, and an overall footer.
func (r *Report) Standard() string {
	var b strings.Builder
	var totalBytes int64
	gameCount := 0

	for _, name := range sortedGameNames(r.Games) {
		game := r.Games[name]
		if game.Decision == DecisionIgnored {
			continue
		}
		gameCount++

		var gameBytes int64
		for _, f := range game.Files {
			gameBytes += f.Bytes
		}
		totalBytes += gameBytes

		flags := ""
		if game.Decision == DecisionFailed {
			flags = " [failed]"
		}
		fmt.Fprintf(&b, "%s (%s)%s\n", name, humanize.Bytes(uint64(gameBytes)), flags)

		for _, path := range sortedKeys(game.Files) {
			f := game.Files[path]
			line := fmt.Sprintf("  %s %s", changeSymbol(f.Change), path)
			if f.RedirectedPath != "" {
				line += " -> " + f.RedirectedPath
			}
			line += annotate(f.Failed, f.Ignored, len(f.DuplicatedBy) > 0)
			b.WriteString(line + "\n")
		}

		for _, path := range sortedRegistryKeys(game.Registry) {
			reg := game.Registry[path]
			line := fmt.Sprintf("  %s %s", changeSymbol(reg.Change), path)
			line += annotate(reg.Failed, reg.Ignored, len(reg.DuplicatedBy) > 0)
			b.WriteString(line + "\n")
			for _, valueName := range sortedValueNames(reg.Values) {
				v := reg.Values[valueName]
				fmt.Fprintf(&b, "    %s %s%s\n", changeSymbol(v.Change), valueName, annotate(false, v.Ignored, len(v.DuplicatedBy) > 0))
			}
		}
	}

	fmt.Fprintf(&b, "\n%d game(s), %s\n", gameCount, humanize.Bytes(uint64(totalBytes)))

	if r.CloudConflict {
		b.WriteString("warning: cloud sync conflict, skipped\n")
	}
	if r.CloudSyncFailed {
		b.WriteString("warning: cloud sync failed\n")
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", msg)
	}

	return b.String()
}

func sortedValueNames(m map[string]RegistryValueEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func annotate(failed, ignored, duplicated bool) string {
	var tags []string
	if failed {
		tags = append(tags, "failed")
	}
	if ignored {
		tags = append(tags, "ignored")
	}
	if duplicated {
		tags = append(tags, "duplicate")
	}
	if len(tags) == 0 {
		return ""
	}
	return " [" + strings.Join(tags, ", ") + "]"
}
