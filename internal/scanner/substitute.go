package scanner

import (
	"os"
	"os/user"
	"strings"

	"vaultkeeper/internal/config"
)

// substitute replaces the manifest placeholders that depend on scan
// context (root path, game name, store/user identity) before the result
// is handed to strictpath, which resolves the remaining OS-level
// placeholders (<home>, <winAppData>, <xdgData>, ...) itself.
func substitute(template, game string, root config.Root) string {
	out := template
	out = strings.ReplaceAll(out, "<root>", root.Path)
	out = strings.ReplaceAll(out, "<base>", root.Path)
	out = strings.ReplaceAll(out, "<game>", game)
	out = strings.ReplaceAll(out, "<osUserName>", osUserName())
	out = strings.ReplaceAll(out, "<storeUserId>", "*")
	return out
}

func osUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
