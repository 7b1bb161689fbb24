package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/database"
	"github.com/nao1215/stubscan/internal/model"
	"github.com/nao1215/stubscan/internal/report"
	"github.com/spf13/cobra"
)

// noStubsMessage is shown for saved scans without stubs.
const noStubsMessage = "No stubs"

// NewHistoryCmd creates the history command.
// It compares saved scans of a source stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "Compare saved scans of a source",
		Long: `History shows how the stubs of a source changed between scans saved
with 'stubscan scan --save'.

By default the latest two saved scans are compared and the result lists:
- New stubs that appeared since the earlier scan
- Resolved stubs that are no longer present
- Changed stubs whose code block was edited but is still a stub
- Unchanged stubs

When fewer than two scans are saved, the scan history is listed instead.
Without a source argument, src/js/effects.js is used.

Examples:
  # Compare the latest two scans of the default source
  stubscan history

  # List saved scans of a source
  stubscan history --list src/js/effects.js

  # Compare the latest scan with a specific saved scan
  stubscan history --with-scan-id 5 src/js/effects.js

  # List every source in the database
  stubscan history --list-sources`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List saved scans of the source")
	cmd.Flags().BoolP("list-sources", "L", false,
		"List all sources in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare the latest scan with a specific scan by ID (use --list to see available IDs)")

	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	addReportFlags(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	// Validate flags before opening the database so a usage error never
	// leaves a lock behind.
	if err := readReportFlags(cmd, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	listSources, err := cmd.Flags().GetBool("list-sources")
	if err != nil {
		return err
	}
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}

	source := config.DefaultSourcePath
	if len(args) > 0 {
		source = args[0]
	}

	logger := setupLogger(cmd)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	logger.Debug("database opened", "path", db.Path())

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if listSources {
		return listSavedSources(ctx, out, db)
	}
	if listHistory {
		return listScanHistory(ctx, out, db, source)
	}
	return runComparison(ctx, cfg, out, db, source, withScanID)
}

// listSavedSources lists all sources that have saved scans.
func listSavedSources(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	sources, err := db.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Fprintln(out, "No saved scans found in the database.")
		fmt.Fprintln(out, "\nUse 'stubscan scan --save' to save a scan.")
		return nil
	}

	fmt.Fprintf(out, "Sources (%d):\n\n", len(sources))
	for _, source := range sources {
		fmt.Fprintf(out, "  • %s\n", source)
	}
	fmt.Fprintln(out, "\nUse 'stubscan history --list <source>' to see the saved scans of a source.")

	return nil
}

// listScanHistory lists all saved scans of source.
func listScanHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, source string) error {
	history, err := db.GetScanHistoryWithMetadata(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No saved scans found for %s\n", source)
		fmt.Fprintln(out, "\nUse 'stubscan scan --save' to save a scan of this source.")
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", source, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Stubs", "Reasons")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, meta := range history {
		fmt.Fprintf(out, "  %-6d  %-20s  %-7s  %s\n",
			meta.ID,
			meta.ScannedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", meta.StubCount, meta.Registrations),
			formatReasonSummary(meta.ReasonSummary),
		)
	}

	fmt.Fprintln(out, "\nUse 'stubscan history <source>' to compare the latest two scans.")
	fmt.Fprintln(out, "Use 'stubscan history --with-scan-id <id> <source>' to compare with a specific scan.")

	return nil
}

// formatReasonSummary formats reason counts as "short:2 marker:TODO:1",
// most frequent first.
func formatReasonSummary(summary map[string]int) string {
	if len(summary) == 0 {
		return noStubsMessage
	}

	labels := make([]string, 0, len(summary))
	for label := range summary {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if summary[labels[i]] != summary[labels[j]] {
			return summary[labels[i]] > summary[labels[j]]
		}
		return labels[i] < labels[j]
	})

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s:%d", label, summary[label]))
	}
	return strings.Join(parts, " ")
}

// runComparison compares the latest saved scan of source with the previous
// one, or with the scan withScanID when it is set.
func runComparison(ctx context.Context, cfg *config.Config, out io.Writer, db *database.HistoryDB, source string, withScanID int64) error {
	reports, err := db.GetScanHistory(ctx, source, 0)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", source)
	}

	if len(reports) < 2 && withScanID == 0 {
		return listScanHistory(ctx, out, db, source)
	}

	// Latest report is always the current one
	current := reports[0]

	var previous *model.ScanReport
	if withScanID > 0 {
		previous, err = scanOfSource(ctx, db, source, withScanID)
		if err != nil {
			return err
		}
	} else {
		previous = reports[1]
	}

	comparison := model.NewScanComparison(previous, current)

	return outputReport(cfg, out, false, func(w report.Writer) (int, error) {
		return w.WriteComparison(comparison)
	})
}

// scanOfSource loads scan id and checks that it belongs to source.
func scanOfSource(ctx context.Context, db *database.HistoryDB, source string, id int64) (*model.ScanReport, error) {
	history, err := db.GetScanHistoryWithMetadata(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	if !slices.ContainsFunc(history, func(m database.ScanReportMetadata) bool { return m.ID == id }) {
		return nil, fmt.Errorf("scan with ID %d not found for %s", id, source)
	}

	r, err := db.GetScanReportByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan with ID %d: %w", id, err)
	}
	if r == nil {
		return nil, fmt.Errorf("scan with ID %d not found", id)
	}
	return r, nil
}
