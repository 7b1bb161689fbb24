package main

import (
	"fmt"

	"github.com/nao1215/stubscan/internal/audit"
	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/report"
	"github.com/spf13/cobra"
)

// NewAuditCmd creates the audit command.
func NewAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [effects-file]",
		Short: "Check that every effect the app lists is registered",
		Long: `Audit collects the effect ids listed in effects: [...] arrays of the
application file and checks each one for a register(...) call in the effects
library. It prints how many ids were mentioned, how many were found, and
which are missing.

Examples:
  # Audit the default files (src/js/app.js against src/js/effects.js)
  stubscan audit

  # Audit a different app file
  stubscan audit --app web/main.js web/effects.js

  # Output Markdown
  stubscan audit --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAuditCmd,
	}

	cmd.Flags().StringP("app", "a", config.DefaultAppSourcePath,
		"Application file containing effects: [...] lists")
	addReportFlags(cmd)

	return cmd
}

// runAuditCmd executes the audit command.
func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.AppSourcePath, err = cmd.Flags().GetString("app")
	if err != nil {
		return err
	}

	effectsPath := config.DefaultSourcePath
	if len(args) > 0 {
		effectsPath = args[0]
	}

	if err := readReportFlags(cmd, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	logger.Info("starting audit", "app", cfg.AppSourcePath, "effects", effectsPath)

	result, err := audit.Run(cfg.AppSourcePath, effectsPath)
	if err != nil {
		return err
	}

	logger.Info("audit complete",
		"mentioned", len(result.Mentioned),
		"found", len(result.Found),
		"missing", len(result.Missing),
	)

	return outputReport(cfg, cmd.OutOrStdout(), false, func(w report.Writer) (int, error) {
		return w.WriteAudit(result)
	})
}
