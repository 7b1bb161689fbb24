package main

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/scanner"
	"github.com/spf13/cobra"
)

//go:embed templates/stubscan.yaml.tmpl
var configTemplateText string

// configTemplate renders the starter configuration file.
var configTemplate = template.Must(template.New("stubscan.yaml").
	Funcs(template.FuncMap{"quote": strconv.Quote}).
	Parse(configTemplateText))

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// initSettings is the data the configuration template is rendered with.
type initSettings struct {
	Threshold int
	Markers   []string
	Sources   []string
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new stubscan configuration file",
		Long: `Initialize creates a new .stubscan configuration file in the current directory.

The generated file holds the default threshold and marker words and a
per-source entry for every source given with --source or found with --dir.
Without either, src/js/effects.js gets an entry when it exists.

Examples:
  # Create .stubscan in current directory
  stubscan init

  # Pre-fill entries for every effects library in a directory
  stubscan init --dir src/js/effects

  # Start from a lower threshold and an extra marker word
  stubscan init --threshold 100 --markers TODO,Placeholder,FIXME

  # Create config file at a specific path, overwriting it
  stubscan init -o myconfig.yaml -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")
	cmd.Flags().StringSlice("source", nil,
		"Source file to add a per-source entry for (repeatable)")
	cmd.Flags().StringP("dir", "d", "",
		"Add a per-source entry for every .js file in this directory")
	cmd.Flags().IntP("threshold", "t", config.DefaultThreshold,
		"Default stub length threshold written to the file")
	cmd.Flags().StringSlice("markers", config.DefaultMarkers(),
		"Default marker words written to the file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	settings, err := readInitSettings(cmd)
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, settings); err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	if len(settings.Sources) > 0 {
		fmt.Fprintf(out, "Per-source entries: %d\n", len(settings.Sources))
	}
	fmt.Fprintln(out, "\nEdit this file to configure settings such as:")
	fmt.Fprintln(out, "  - Stub threshold and marker words")
	fmt.Fprintln(out, "  - Per-source overrides and registration patterns")
	fmt.Fprintln(out, "  - Shadertoy API key for 'stubscan lookup'")

	return nil
}

// readInitSettings collects and checks the values written to the file.
func readInitSettings(cmd *cobra.Command) (initSettings, error) {
	var s initSettings

	threshold, err := cmd.Flags().GetInt("threshold")
	if err != nil {
		return s, err
	}
	if threshold <= 0 {
		return s, config.ErrInvalidThreshold
	}

	markers, err := cmd.Flags().GetStringSlice("markers")
	if err != nil {
		return s, err
	}
	for _, m := range markers {
		if m == "" {
			return s, config.ErrEmptyMarker
		}
	}

	explicit, err := cmd.Flags().GetStringSlice("source")
	if err != nil {
		return s, err
	}
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return s, err
	}

	if len(explicit) == 0 && dir == "" {
		if _, err := os.Stat(config.DefaultSourcePath); err == nil {
			explicit = []string{config.DefaultSourcePath}
		} else if !errors.Is(err, os.ErrNotExist) {
			return s, fmt.Errorf("failed to check %s: %w", config.DefaultSourcePath, err)
		}
	}

	sources, err := scanner.CollectSources(explicit, dir)
	if err != nil {
		return s, err
	}
	for i, src := range sources {
		sources[i] = filepath.ToSlash(filepath.Clean(src))
	}

	return initSettings{Threshold: threshold, Markers: markers, Sources: sources}, nil
}
