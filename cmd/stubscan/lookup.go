package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/report"
	"github.com/nao1215/stubscan/internal/shadertoy"
	"github.com/spf13/cobra"
)

// NewLookupCmd creates the lookup command.
func NewLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <shader-id>...",
		Short: "Resolve Shadertoy shader ids to name and author",
		Long: `Lookup resolves Shadertoy shader ids, which effects often credit as
their source, to the shader name and author.

With an API key the Shadertoy API is queried. Without one, or when the API
has no such shader, the shader page is read instead: the name comes from its
title and the author from the shader data embedded in the page. Ids that cannot be resolved are listed with the reason.

The API key can be given with --api-key or in the configuration file:
  shadertoy:
    apiKey: "your-key"

Examples:
  # Resolve two shaders
  stubscan lookup XsXXDn 4dcGW2

  # Output JSON
  stubscan lookup --json XsXXDn`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLookupCmd,
	}

	cmd.Flags().String("api-key", "",
		"Shadertoy API key (overrides the configuration file)")
	cmd.Flags().DurationP("timeout", "T", config.DefaultLookupTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("concurrency", "n", config.DefaultLookupConcurrency,
		"Number of lookups in flight")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .stubscan in current or home directory)")
	addReportFlags(cmd)

	return cmd
}

// runLookupCmd executes the lookup command.
func runLookupCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg.File, err = loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return err
	}

	apiKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return err
	}
	if apiKey == "" {
		apiKey = cfg.File.Shadertoy.APIKey
	}

	cfg.LookupTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		return fmt.Errorf("configuration error: invalid concurrency %d: must be positive", concurrency)
	}

	if err := readReportFlags(cmd, cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, cancel := signalContext(logger)
	defer cancel()

	client := newShadertoyClient(cfg, apiKey, cfg.LookupTimeout, concurrency, logger)

	logger.Info("starting lookup", "ids", len(args), "useAPI", apiKey != "")

	infos, err := client.LookupAll(ctx, args)
	if err != nil {
		return err
	}

	return outputReport(cfg, cmd.OutOrStdout(), false, func(w report.Writer) (int, error) {
		return w.WriteShaders(infos)
	})
}

// newShadertoyClient builds a lookup client from the configuration file's
// shadertoy section.
func newShadertoyClient(cfg *config.Config, apiKey string, timeout time.Duration, concurrency int, logger *slog.Logger) *shadertoy.Client {
	st := cfg.File.Shadertoy
	return shadertoy.NewClient(
		shadertoy.WithAPIKey(apiKey),
		shadertoy.WithBaseURL(st.BaseURL),
		shadertoy.WithUserAgent(st.UserAgent),
		shadertoy.WithTimeout(timeout),
		shadertoy.WithConcurrency(concurrency),
		shadertoy.WithLogger(logger),
	)
}
