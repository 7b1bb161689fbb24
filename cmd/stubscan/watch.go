package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/model"
	"github.com/nao1215/stubscan/internal/report"
	"github.com/nao1215/stubscan/internal/scanner"
	"github.com/nao1215/stubscan/internal/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file...]",
		Short: "Rescan sources whenever they change",
		Long: `Watch scans the sources once, then rescans a source and prints its report
each time the file is written, until interrupted. Rapid successive writes
are coalesced into one rescan.

Status messages go to stderr so stdout carries only reports.

Examples:
  # Watch the default effects library
  stubscan watch

  # Watch every .js file in a directory and save each rescan
  stubscan watch --dir src/js --save`,
		Args: cobra.ArbitraryArgs,
		RunE: runWatchCmd,
	}

	addScanFlags(cmd)
	cmd.Flags().Duration("debounce", config.DefaultWatchDebounce,
		"Quiet period after a write before the source is rescanned")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.WatchDebounce, err = cmd.Flags().GetDuration("debounce")
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

	return runWatch(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), details, logger)
}

// runWatch prints an initial report, then rescans each source after it
// changes until ctx is done. Reports go to out, progress to status.
func runWatch(ctx context.Context, cfg *config.Config, out, status io.Writer, details bool, logger *slog.Logger) error {
	sources, err := scanner.CollectSources(cfg.Sources, cfg.SourceDir)
	if err != nil {
		return err
	}

	// A failing initial scan is reported but does not stop watching: the
	// file may be created or fixed later.
	if err := runScan(ctx, cfg, out, details, logger); err != nil {
		fmt.Fprintf(status, "Scan error: %v\n", err)
	}

	rescan := func(source string) {
		fmt.Fprintf(status, "[%s] %s changed, rescanning...\n", time.Now().Format("15:04:05"), source)

		r, err := scanSource(cfg, source, logger)
		if err != nil {
			fmt.Fprintf(status, "Scan error for %s: %v\n", source, err)
			return
		}

		if err := outputReport(cfg, out, details, func(w report.Writer) (int, error) {
			return w.Write(r)
		}); err != nil {
			logger.Error("report failed", "source", source, "error", err)
		}

		if err := saveScanReports(ctx, cfg, []*model.ScanReport{r}, logger); err != nil {
			logger.Error("failed to save scan report", "source", source, "error", err)
		}
	}

	w, err := watch.New(sources, rescan,
		watch.WithDebounce(cfg.WatchDebounce),
		watch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(status, "Watching %d source(s). Press Ctrl+C to stop.\n", len(sources))

	return w.Run(ctx)
}
