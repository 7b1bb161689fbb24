package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for stubscan.
// Running it without a subcommand scans the default effects library.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stubscan",
		Short: "Find stubbed shader effects in an effects library",
		Long: `stubscan reads a JavaScript effects library and reports every
register('<id>', ` + "`<code>`" + `, ...) call whose code block looks like a stub:
shorter than 150 characters after trimming, or containing TODO or Placeholder.

Without a subcommand it scans src/js/effects.js in the current directory
and prints the report.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScanCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	addScanFlags(cmd)

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewLookupCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
