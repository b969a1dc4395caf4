// Package orchestrator drives a backup or restore operation across many
// games in parallel, enforcing cloud-sync preconditions/postconditions and
// folding per-game results into a DuplicateDetector and a Reporter.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"vaultkeeper/internal/backuplayout"
	"vaultkeeper/internal/changekind"
	"vaultkeeper/internal/cloudsync"
	"vaultkeeper/internal/config"
	"vaultkeeper/internal/duplicate"
	"vaultkeeper/internal/gamelayout"
	"vaultkeeper/internal/manifest"
	"vaultkeeper/internal/regpath"
	"vaultkeeper/internal/reporter"
	"vaultkeeper/internal/scanner"
	"vaultkeeper/internal/strictpath"
)

// Options bundles the knobs a single operation run needs beyond the
// manifest/config pair: which games to target, whether this is only a
// preview (no writes), and a worker-count override.
type Options struct {
	Games       []string // empty means "every manifest game"
	Preview     bool
	Concurrency int // 0 means host parallelism
}

type gameOutcome struct {
	name   string
	scan   scanner.ScanInfo
	info   gamelayout.BackupInfo
	report reporter.GameReport
	failed bool
	err    error
}

// Backup runs the full backup flow: optional cloud pre-check, target
// preparation, parallel per-game scan+backup, duplicate indexing, optional
// cloud post-sync, and report emission.
func Backup(ctx context.Context, m manifest.Manifest, cfg config.Config, opts Options) (*reporter.Report, error) {
	report := reporter.New()
	cloudConflict := false
	cloudSyncFailed := false

	if cfg.Cloud.Synchronize && !opts.Preview {
		conflict, err := previewCloudSync(ctx, cfg)
		if err != nil {
			cloudSyncFailed = true
		} else if conflict {
			cloudConflict = true
		}
	}

	if !opts.Preview {
		if err := os.MkdirAll(cfg.Backup.Path, 0o755); err != nil {
			return nil, fmt.Errorf("preparing backup target: %w", err)
		}
	}

	names := resolveGames(m, opts.Games)

	layout, err := backuplayout.Load(strictpath.New(cfg.Backup.Path))
	if err != nil {
		return nil, fmt.Errorf("loading backup layout: %w", err)
	}

	outcomes, err := runParallel(ctx, names, opts.Concurrency, func(name string) gameOutcome {
		return backupOne(layout, m, cfg, name, opts.Preview)
	})
	if err != nil {
		return nil, err
	}

	detector := duplicate.NewDetector()
	needsSync := false
	var syncedFolders []string

	for _, o := range outcomes {
		if o.err != nil {
			report.AddError(fmt.Sprintf("%s: %v", o.name, o.err))
			continue
		}
		report.AddGame(o.name, o.report)
		addToDetector(detector, o.name, o.scan, o.report.Decision != reporter.DecisionIgnored)
		if o.report.Change.Novel() {
			needsSync = true
			syncedFolders = append(syncedFolders, backuplayout.FolderNameFor(o.name))
		}
	}

	if cfg.Cloud.Synchronize && !opts.Preview && !cloudConflict && needsSync {
		if err := uploadFolders(ctx, cfg, syncedFolders); err != nil {
			cloudSyncFailed = true
		}
	}

	report.CloudConflict = cloudConflict
	report.CloudSyncFailed = cloudSyncFailed
	return report, nil
}

// Restore runs the simpler restore flow: no target preparation, no
// retention changes, no post-sync.
func Restore(ctx context.Context, m manifest.Manifest, cfg config.Config, opts Options) (*reporter.Report, error) {
	report := reporter.New()

	names := resolveGames(m, opts.Games)

	layout, err := backuplayout.Load(strictpath.New(cfg.Restore.Path))
	if err != nil {
		return nil, fmt.Errorf("loading backup layout: %w", err)
	}

	outcomes, err := runParallel(ctx, names, opts.Concurrency, func(name string) gameOutcome {
		return restoreOne(layout, cfg, name, opts.Preview)
	})
	if err != nil {
		return nil, err
	}

	detector := duplicate.NewDetector()
	for _, o := range outcomes {
		if o.err != nil {
			report.AddError(fmt.Sprintf("%s: %v", o.name, o.err))
			continue
		}
		report.AddGame(o.name, o.report)
		addToDetector(detector, o.name, o.scan, true)
	}

	return report, nil
}

func resolveGames(m manifest.Manifest, requested []string) []string {
	if len(requested) == 0 {
		names := m.Names()
		sort.Strings(names)
		return names
	}
	out := make([]string, 0, len(requested))
	for _, name := range requested {
		if _, ok := m.Games[name]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func runParallel(ctx context.Context, names []string, concurrency int, step func(string) gameOutcome) ([]gameOutcome, error) {
	outcomes := make([]gameOutcome, len(names))
	g, _ := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			outcomes[i] = step(name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func backupOne(layout *backuplayout.BackupLayout, m manifest.Manifest, cfg config.Config, name string, preview bool) gameOutcome {
	entry := m.Games[name]
	for _, ignored := range cfg.Backup.IgnoredGames {
		if ignored == name {
			return gameOutcome{name: name, report: reporter.GameReport{Decision: reporter.DecisionIgnored}}
		}
	}

	gl, err := layout.Open(name, cfg.Backup.Retention)
	if err != nil {
		return gameOutcome{name: name, err: err}
	}

	prior := buildPrior(gl)
	scan := scanner.Scan(name, entry, scanner.Options{
		Roots:              cfg.Roots,
		Filter:             &cfg.Backup.Filter,
		ToggledPaths:       cfg.Backup.ToggledPaths,
		ToggledRegistry:    cfg.Backup.ToggledReg,
		Redirects:          cfg.Redirects,
		Host:               manifest.Host(),
		Prior:              prior,
		ExplicitlySelected: len(cfg.Backup.IgnoredGames) == 0,
	})

	if !scan.CanReportGame(false) {
		return gameOutcome{name: name, scan: scan, report: reporter.GameReport{Decision: reporter.DecisionIgnored, Change: changekind.Unknown}}
	}

	if downgradeSkip(gl, scan) {
		return gameOutcome{name: name, scan: scan, report: buildGameReport(scan, reporter.DecisionIgnored, gamelayout.BackupInfo{})}
	}

	if preview {
		return gameOutcome{name: name, scan: scan, report: buildGameReport(scan, reporter.DecisionProcessed, gamelayout.BackupInfo{})}
	}

	info, did := gl.BackUp(scan, backupTime(), cfg.Backup.Format)
	decision := reporter.DecisionProcessed
	if !did {
		decision = reporter.DecisionIgnored
	} else if !info.OK() {
		decision = reporter.DecisionFailed
	}

	return gameOutcome{name: name, scan: scan, info: info, report: buildGameReport(scan, decision, info)}
}

func restoreOne(layout *backuplayout.BackupLayout, cfg config.Config, name string, preview bool) gameOutcome {
	gl, ok := layout.Games[name]
	if !ok {
		return gameOutcome{name: name, err: fmt.Errorf("no backup found for %s", name)}
	}

	restorable := gl.RestorableFiles("")
	scan := scanner.ScanInfo{Game: name, Files: restorable}

	if preview {
		return gameOutcome{name: name, scan: scan, report: buildGameReport(scan, reporter.DecisionProcessed, gamelayout.BackupInfo{})}
	}

	info := gamelayout.Restore(gl, "", cfg.Redirects)
	decision := reporter.DecisionProcessed
	if !info.OK() {
		decision = reporter.DecisionFailed
	}
	return gameOutcome{name: name, scan: scan, info: info, report: buildGameReport(scan, decision, info)}
}

// downgradeSkip declines a backup step when the prior backup is newer than
// every live file it would write, avoiding re-backing-up an older save the
// user restored temporarily.
func downgradeSkip(gl *gamelayout.GameLayout, scan scanner.ScanInfo) bool {
	flattened := gl.Mapping.RestorableBackupsFlattened()
	if len(flattened) == 0 {
		return false
	}
	latest := flattened[len(flattened)-1]

	var when *time.Time
	if latest.Kind == gamelayout.KindFull {
		when = latest.Full.When
	} else {
		when = latest.Differential.When
	}
	if when == nil {
		return false
	}

	for _, f := range scan.Files {
		if f.Ignored {
			continue
		}
		mtime, err := strictpath.New(f.OriginalPath).MTime()
		if err != nil {
			continue
		}
		if mtime.After(*when) {
			return false
		}
	}
	return true
}

// buildPrior hashes each file the latest backup holds so scanner.classify
// can tell an unchanged live file (same hash, same size) from a changed
// one — a stored copy whose hash can't be read (moved, permissions) is
// treated as having no prior hash, so it's never misreported as unchanged.
func buildPrior(gl *gamelayout.GameLayout) scanner.Prior {
	prior := scanner.Prior{Files: map[string]scanner.PriorFile{}}
	latestID := ""
	restorable := gl.RestorableFiles(latestID)
	for _, f := range restorable {
		hash, _ := gamelayout.HashStoredFile(f)
		prior.Files[f.OriginalPath] = scanner.PriorFile{Hash: hash, Size: f.Size}
	}
	return prior
}

func buildGameReport(scan scanner.ScanInfo, decision string, info gamelayout.BackupInfo) reporter.GameReport {
	failedFiles := map[string]bool{}
	for _, f := range info.FailedFiles {
		failedFiles[f] = true
	}
	// Registry failures are a single aggregate flag per spec, not
	// per-key — every registry entry in this game's report is marked
	// failed together when that flag trips.
	registryFailed := len(info.FailedRegistry) > 0

	files := map[string]reporter.FileEntry{}
	for _, f := range scan.Files {
		files[f.Path] = reporter.FileEntry{
			Bytes:          f.Size,
			Change:         f.Change,
			Failed:         failedFiles[f.OriginalPath],
			Ignored:        f.Ignored,
			OriginalPath:   f.OriginalPath,
			RedirectedPath: f.RedirectedTo,
		}
	}

	registry := map[string]reporter.RegistryEntry{}
	for _, r := range scan.Registry {
		values := map[string]reporter.RegistryValueEntry{}
		for name, v := range r.Values {
			values[name] = reporter.RegistryValueEntry{Change: v.Change, Ignored: v.Ignored}
		}
		registry[r.Path.Render()] = reporter.RegistryEntry{
			Change:  r.Change,
			Failed:  registryFailed,
			Ignored: r.Ignored,
			Values:  values,
		}
	}

	return reporter.GameReport{
		Decision: decision,
		Change:   scan.OverallChange(),
		Files:    files,
		Registry: registry,
	}
}

func addToDetector(detector *duplicate.Detector, name string, scan scanner.ScanInfo, enabled bool) {
	var files []string
	for _, f := range scan.Files {
		files = append(files, f.OriginalPath)
	}
	var keys []regpath.Item
	var pairs []duplicate.RegistryValueClaim
	for _, r := range scan.Registry {
		keys = append(keys, r.Path)
		for valueName := range r.Values {
			pairs = append(pairs, duplicate.RegistryValueClaim{Path: r.Path, Value: valueName})
		}
	}
	detector.AddGame(name, enabled, files, keys, pairs)
}

func previewCloudSync(ctx context.Context, cfg config.Config) (conflict bool, err error) {
	changed := false
	runErr := cloudsync.Run(ctx, cfg.Apps.Rclone.Path, cfg.Backup.Path, cfg.Cloud.Remote+":"+cfg.Cloud.Path, nil, true, func(e cloudsync.Event) {
		if !e.Progress {
			changed = true
		}
	})
	if runErr != nil {
		return false, runErr
	}
	return changed, nil
}

func uploadFolders(ctx context.Context, cfg config.Config, folders []string) error {
	var includes []string
	for _, f := range folders {
		includes = append(includes, "/"+f+"/**")
	}
	return cloudsync.Run(ctx, cfg.Apps.Rclone.Path, cfg.Backup.Path, cfg.Cloud.Remote+":"+cfg.Cloud.Path, includes, false, func(cloudsync.Event) {})
}

func backupTime() time.Time {
	return time.Now()
}
