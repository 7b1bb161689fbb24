package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/log"
	"github.com/nao1215/stubscan/internal/report"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the stderr logger for a command and installs it as
// the slog default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	logger := log.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// loadConfigFile resolves and loads the configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise a missing file yields an empty configuration.
func loadConfigFile(configFilePath string) (*config.File, error) {
	configPath := config.FindConfigFile(configFilePath)

	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		return cf, nil
	case configFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configFilePath)
	default:
		return &config.File{
			Sources: make(map[string]config.SourceConfig),
		}, nil
	}
}

// addReportFlags registers the output format flags shared by every command
// that prints a report.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// readReportFlags copies the output format flags into cfg.
func readReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}
	return nil
}

// newReportWriter returns the writer for the format selected in cfg.
func newReportWriter(cfg *config.Config, output io.Writer, details bool) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithDetails(details))
	}
}

// outputReport runs write against the configured destination: cfg.ReportFile
// when set, stdout otherwise.
func outputReport(cfg *config.Config, stdout io.Writer, details bool, write func(report.Writer) (int, error)) (err error) {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, openErr := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if openErr != nil {
			return fmt.Errorf("failed to create output file: %w", openErr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		output = f
	}

	if _, err := write(newReportWriter(cfg, output, details)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
