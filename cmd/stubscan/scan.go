package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/database"
	"github.com/nao1215/stubscan/internal/model"
	"github.com/nao1215/stubscan/internal/report"
	"github.com/nao1215/stubscan/internal/scanner"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Report stubbed shader registrations",
		Long: `Scan reads JavaScript effects libraries and reports every register(...)
call whose trimmed code block is shorter than the threshold or contains a
marker word.

With no file arguments and no --dir, src/js/effects.js is scanned.

Examples:
  # Scan the default effects library
  stubscan scan

  # Scan specific files concurrently
  stubscan scan src/js/effects.js src/js/legacy.js

  # Scan every .js file in a directory
  stubscan scan --dir src/js

  # Show line numbers and reasons
  stubscan scan --details

  # Save the result so later runs can be compared
  stubscan scan --save

  # Use a custom configuration file
  stubscan scan -c myconfig.yaml

Configuration file (.stubscan) example:
  defaults:
    threshold: 150
    markers: [TODO, Placeholder]
  sources:
    src/js/legacy.js:
      threshold: 80
      pattern: 'effect\(\s*"(?<id>[^"]+)"\s*,\s*` + "`" + `(?<code>.*?)` + "`" + `'`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	addScanFlags(cmd)

	return cmd
}

// addScanFlags registers the flags that configure scanning and reporting.
func addScanFlags(cmd *cobra.Command) {
	// Source selection flags
	cmd.Flags().StringP("dir", "d", "",
		"Scan every .js file in this directory")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of files scanned concurrently")

	// Classification flags
	cmd.Flags().IntP("threshold", "t", config.DefaultThreshold,
		"Trimmed code length (in characters) below which a registration is a stub")
	cmd.Flags().StringSlice("markers", config.DefaultMarkers(),
		"Case-sensitive words that mark a code block as a stub")
	cmd.Flags().StringP("pattern", "p", "",
		"Custom registration pattern with named groups \"id\" and \"code\"")
	cmd.Flags().Duration("match-timeout", config.DefaultMatchTimeout,
		"Time limit for a single evaluation of a custom pattern (0 for no limit)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .stubscan in current or home directory)")

	// History flags
	cmd.Flags().BoolP("save", "s", false,
		"Save the scan result to the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Report flags
	cmd.Flags().BoolP("details", "D", false,
		"Show line numbers and reasons in the text report")
	addReportFlags(cmd)
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	details, err := cmd.Flags().GetBool("details")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runScan(ctx, cfg, cmd.OutOrStdout(), details, logger)
}

// buildConfig creates a Config from cobra command flags and the
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.SourceDir, err = cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}

	// Positional files replace the default source; --dir alone does too.
	switch {
	case len(args) > 0:
		cfg.Sources = args
	case cfg.SourceDir != "":
		cfg.Sources = nil
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.File, err = loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	// Explicit flags win over the file's defaults; per-source entries in the
	// file are applied later by Config.SourceSettings.
	cfg.Threshold, err = cmd.Flags().GetInt("threshold")
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("threshold") && cfg.File.Defaults.Threshold > 0 {
		cfg.Threshold = cfg.File.Defaults.Threshold
	}

	cfg.Markers, err = cmd.Flags().GetStringSlice("markers")
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("markers") && len(cfg.File.Defaults.Markers) > 0 {
		cfg.Markers = append([]string(nil), cfg.File.Defaults.Markers...)
	}

	cfg.Pattern, err = cmd.Flags().GetString("pattern")
	if err != nil {
		return nil, err
	}
	if cfg.Pattern == "" {
		cfg.Pattern = cfg.File.Pattern
	}
	if cfg.Pattern == "" {
		cfg.Pattern = cfg.File.Defaults.Pattern
	}

	cfg.MatchTimeout, err = cmd.Flags().GetDuration("match-timeout")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	if err := readReportFlags(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// scannerFactory builds a Scanner per source from its effective settings.
func scannerFactory(cfg *config.Config, logger *slog.Logger) scanner.Factory {
	return func(source string) (*scanner.Scanner, error) {
		settings := cfg.SourceSettings(source)
		return scanner.New(
			scanner.WithThreshold(settings.Threshold),
			scanner.WithMarkers(settings.Markers),
			scanner.WithPattern(settings.Pattern),
			scanner.WithMatchTimeout(cfg.MatchTimeout),
			scanner.WithLogger(logger),
		)
	}
}

// runScan scans every configured source, prints the report, and saves it
// when requested. A single source that cannot be read is an error with no
// output. With several sources, failures are reported inline and the run
// still returns an error.
func runScan(ctx context.Context, cfg *config.Config, out io.Writer, details bool, logger *slog.Logger) error {
	sources, err := scanner.CollectSources(cfg.Sources, cfg.SourceDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("%w: no .js files in %s", config.ErrNoSource, cfg.SourceDir)
	}

	logger.Info("starting scan",
		"sources", sources,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	var reports []*model.ScanReport
	if len(sources) == 1 {
		r, err := scanSource(cfg, sources[0], logger)
		if err != nil {
			return err
		}
		reports = []*model.ScanReport{r}
	} else {
		bs := scanner.NewBatchScanner(
			scannerFactory(cfg, logger),
			scanner.WithConcurrency(cfg.BatchSize),
			scanner.WithBatchLogger(logger),
		)
		reports, err = bs.ScanAll(ctx, sources)
		if err != nil {
			return err
		}
	}

	if err := outputReport(cfg, out, details, func(w report.Writer) (int, error) {
		return w.WriteAll(reports)
	}); err != nil {
		return err
	}

	if err := saveScanReports(ctx, cfg, reports, logger); err != nil {
		return err
	}

	return failedSources(reports)
}

// scanSource scans one source. A failed scan is returned as an error.
func scanSource(cfg *config.Config, source string, logger *slog.Logger) (*model.ScanReport, error) {
	s, err := scannerFactory(cfg, logger)(source)
	if err != nil {
		return nil, err
	}
	r := s.ScanReport(source)
	if r.Failed() {
		return nil, r.Error
	}
	return r, nil
}

// saveScanReports stores successful reports when saving is enabled.
func saveScanReports(ctx context.Context, cfg *config.Config, reports []*model.ScanReport, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var errs []error
	for _, r := range reports {
		if r == nil || r.Failed() {
			continue
		}
		id, err := db.SaveScanReport(ctx, r)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save scan report for %s: %w", r.Source, err))
			continue
		}
		logger.Info("scan report saved to database", "source", r.Source, "id", id)
	}
	return errors.Join(errs...)
}

// failedSources returns an error naming how many reports failed.
func failedSources(reports []*model.ScanReport) error {
	failed := 0
	for _, r := range reports {
		if r == nil || r.Failed() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d sources could not be scanned", failed, len(reports))
}
