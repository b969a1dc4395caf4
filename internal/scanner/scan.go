package scanner

import (
	"github.com/rs/zerolog/log"

	"vaultkeeper/internal/changekind"
	"vaultkeeper/internal/config"
	"vaultkeeper/internal/manifest"
	"vaultkeeper/internal/regpath"
	"vaultkeeper/internal/registrystore"
	"vaultkeeper/internal/strictpath"
)

// PriorFile is what the previous backup recorded for one original path,
// used to classify the live file's change without re-reading its bytes.
type PriorFile struct {
	Hash string
	Size int64
}

// Prior is everything the scanner needs from the previous backup to
// classify changes; a nil Registry means no registry was captured before.
type Prior struct {
	Files    map[string]PriorFile
	Registry registrystore.Hives
}

// Options bundles the scan's environment-derived inputs.
type Options struct {
	Roots               []config.Root
	Filter              *config.BackupFilter
	ToggledPaths        config.ToggledPaths
	ToggledRegistry     config.ToggledRegistry
	Redirects           []config.RedirectConfig
	Host                manifest.OS
	ConstructiveOnly    bool
	Prior               Prior
	ExplicitlySelected  bool
}

// Scan matches game's manifest entry against the live filesystem (and, on
// Windows, the registry), producing a ScanInfo.
func Scan(game string, entry manifest.Game, opts Options) ScanInfo {
	info := ScanInfo{Game: game}

	for template, fileEntry := range entry.Files {
		for _, root := range opts.Roots {
			if !fileEntry.Allowed(opts.Host, root.Store) {
				continue
			}
			info.Files = append(info.Files, scanTemplate(game, template, root, opts)...)
		}
	}

	for template, regEntry := range entry.Registry {
		for _, root := range opts.Roots {
			if !regEntry.Allowed(root.Store) {
				continue
			}
			filter := adaptFilter{opts.Filter}
			toggled := adaptToggler{opts.ToggledRegistry}
			item := regpath.NewItem(substitute(template, game, root))
			scanned, err := registrystore.Scan(game, item, filter, toggled, opts.Prior.Registry)
			if err != nil {
				log.Debug().Err(err).Str("game", game).Str("key", template).Msg("registry scan skipped")
				continue
			}
			info.Registry = append(info.Registry, scanned...)
		}
	}

	return info
}

func scanTemplate(game, template string, root config.Root, opts Options) []ScannedFile {
	substituted := substitute(template, game, root)
	path := strictpath.New(substituted)

	var out []ScannedFile
	for _, candidate := range path.Glob() {
		resolved := config.Resolve(opts.Redirects, candidate, false)

		if !candidate.Exists() || candidate.IsDir() {
			continue
		}
		if opts.Filter != nil && opts.Filter.IsPathIgnored(candidate) {
			continue
		}

		rendered := candidate.Render()
		size, err := candidate.Size()
		if err != nil {
			continue
		}
		hash, err := candidate.SHA1()
		if err != nil {
			continue
		}

		ignored := opts.ToggledPaths.IsIgnored(game, rendered)
		change := classify(rendered, hash, size, opts.Prior)

		redirectedTo := ""
		if resolved.Raw() != candidate.Raw() {
			redirectedTo = resolved.Render()
		}

		out = append(out, ScannedFile{
			Path:         rendered,
			OriginalPath: rendered,
			Size:         size,
			Hash:         hash,
			Ignored:      ignored,
			Change:       change,
			RedirectedTo: redirectedTo,
		})
	}
	return out
}

func classify(renderedPath, hash string, size int64, prior Prior) changekind.ScanChange {
	prev, ok := prior.Files[renderedPath]
	if !ok {
		return changekind.New
	}
	if prev.Hash == hash && prev.Size == size {
		return changekind.Same
	}
	return changekind.Different
}

// adaptFilter and adaptToggler satisfy registrystore.Filter/Toggler using
// config's types, without registrystore ever importing config.
type adaptFilter struct{ f *config.BackupFilter }

func (a adaptFilter) IsRegistryIgnored(path regpath.Item) bool {
	if a.f == nil {
		return false
	}
	return a.f.IsRegistryIgnored(path)
}

type adaptToggler struct{ t config.ToggledRegistry }

func (a adaptToggler) IsIgnored(game string, path regpath.Item, value *string) bool {
	return a.t.IsIgnored(game, path, value)
}
