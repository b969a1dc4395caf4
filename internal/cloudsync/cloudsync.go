// Package cloudsync launches the external synchronizer (an rclone-
// compatible binary) as a child process and translates its newline-
// delimited JSON log lines into change/progress events.
package cloudsync

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog/log"

	"vaultkeeper/internal/changekind"
)

// Direction resolves a preview conflict: which way to actually sync.
type Direction string

const (
	DirectionDownload Direction = "download"
	DirectionUpload   Direction = "upload"
	DirectionNone     Direction = "none"
)

// Event is one change or progress record surfaced while a sync runs.
type Event struct {
	Path     string
	Change   changekind.ScanChange
	Progress bool
	Bytes    int64
	Total    int64
}

// record is the subset of rclone's --use-json-log line shapes this package
// recognizes; every other field/shape is ignored.
type record struct {
	Skipped string `json:"skipped"`
	Msg     string `json:"msg"`
	Object  string `json:"object"`
	Stats   *struct {
		Bytes      int64 `json:"bytes"`
		TotalBytes int64 `json:"totalBytes"`
	} `json:"stats"`
}

func (r record) toEvent() (Event, bool) {
	switch {
	case r.Stats != nil:
		if r.Stats.TotalBytes <= 0 {
			return Event{}, false
		}
		return Event{Progress: true, Bytes: r.Stats.Bytes, Total: r.Stats.TotalBytes}, true
	case r.Skipped == "copy":
		return Event{Path: r.Object, Change: changekind.Different}, true
	case r.Skipped == "delete":
		return Event{Path: r.Object, Change: changekind.Removed}, true
	case r.Msg == "Copied (new)":
		return Event{Path: r.Object, Change: changekind.New}, true
	case r.Msg == "Copied (replaced existing)":
		return Event{Path: r.Object, Change: changekind.Different}, true
	case r.Msg == "Deleted":
		return Event{Path: r.Object, Change: changekind.Removed}, true
	default:
		return Event{}, false
	}
}

// Run launches `rclone sync` between src and dst, restricted to the given
// game-folder include globs, streaming recognized events to onEvent as
// they're parsed off stderr. dryRun runs a preview without touching dst.
func Run(ctx context.Context, binary, src, dst string, includeGlobs []string, dryRun bool, onEvent func(Event)) error {
	args := []string{"sync", "-v", "--use-json-log", "--stats=100ms"}
	if dryRun {
		args = append(args, "--dry-run")
	}
	for _, glob := range includeGlobs {
		args = append(args, fmt.Sprintf("--include=%s", glob))
	}
	args = append(args, src, dst)

	cmd := exec.CommandContext(ctx, binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Bytes()
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Warn().Str("line", string(line)).Msg("cloudsync: unrecognized log line")
			continue
		}
		if event, ok := rec.toEvent(); ok {
			onEvent(event)
		} else {
			log.Debug().Str("line", string(line)).Msg("cloudsync: ignored log record")
		}
	}

	return cmd.Wait()
}
