// Command vaultkeeper is a thin wiring entrypoint: load a manifest and a
// config, run one backup or restore operation, print the reporter output.
// Argument parsing stays intentionally minimal — a real CLI surface (flag
// validation, subcommands, interactive prompts) is out of scope.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"vaultkeeper/internal/config"
	"vaultkeeper/internal/manifest"
	"vaultkeeper/internal/orchestrator"
	"vaultkeeper/internal/reporter"
)

func main() {
	op := flag.String("op", "backup", "operation to run: backup or restore")
	manifestPath := flag.String("manifest", "manifest.yaml", "path to the manifest file")
	configPath := flag.String("config", "config.yaml", "path to the config file")
	jsonOutput := flag.Bool("json", false, "print the report as JSON instead of the standard summary")
	preview := flag.Bool("preview", false, "scan and report without writing anything")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(*op, *manifestPath, *configPath, *jsonOutput, *preview, flag.Args()); err != nil {
		log.Error().Err(err).Msg("operation failed")
		os.Exit(1)
	}
}

func run(op, manifestPath, configPath string, jsonOutput, preview bool, games []string) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	opts := orchestrator.Options{Games: games, Preview: preview}

	var report *reporter.Report
	switch op {
	case "backup":
		report, err = orchestrator.Backup(ctx, m, cfg, opts)
	case "restore":
		report, err = orchestrator.Restore(ctx, m, cfg, opts)
	default:
		return fmt.Errorf("unrecognized operation %q", op)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := report.JSON()
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(report.Standard())
	return nil
}
