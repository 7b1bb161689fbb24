package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultSourcePath is the effects library scanned when no path is given.
	// It is relative to the working directory, matching how the effects
	// project lays out its sources.
	DefaultSourcePath = "src/js/effects.js"

	// DefaultAppSourcePath is the application file whose effects: [...] lists
	// are cross-referenced by the audit command.
	DefaultAppSourcePath = "src/js/app.js"

	// DefaultThreshold is the trimmed code block length (in characters) below
	// which a registration is reported as a stub.
	DefaultThreshold = 150

	// DefaultBatchSize is the number of files scanned concurrently in batch mode.
	DefaultBatchSize = 4

	// DefaultMatchTimeout bounds a single evaluation of a custom registration
	// pattern, which may backtrack heavily. The built-in pattern is unbounded.
	DefaultMatchTimeout = 5 * time.Second

	// DefaultLookupTimeout is the HTTP timeout for shader metadata lookups.
	DefaultLookupTimeout = 30 * time.Second

	// DefaultLookupConcurrency is the number of shader lookups in flight.
	DefaultLookupConcurrency = 4

	// DefaultWatchDebounce is how long a file must stay quiet before watch mode rescans it.
	DefaultWatchDebounce = 300 * time.Millisecond

	// AppName is the application name used for XDG directory paths.
	AppName = "stubscan"
)

// DefaultMarkers returns the marker words that flag a code block regardless
// of its length. A fresh slice is returned so callers may modify it.
func DefaultMarkers() []string {
	return []string{"TODO", "Placeholder"}
}

// Config holds all configuration options for stubscan.
// It is populated from CLI flags and the optional configuration file, then
// passed explicitly to the components that need it.
type Config struct {
	// Sources is the list of JavaScript files to scan.
	Sources []string

	// SourceDir, when set, adds every *.js file in the directory to Sources.
	SourceDir string

	// AppSourcePath is the application file read by the audit command.
	AppSourcePath string

	// Threshold is the length below which a trimmed code block is a stub.
	Threshold int

	// Markers are case-sensitive substrings that flag a code block as a stub.
	Markers []string

	// Pattern overrides the built-in registration pattern.
	// It must define the named groups "id" and "code".
	Pattern string

	// MatchTimeout bounds a single evaluation of a custom pattern.
	// Zero disables the limit.
	MatchTimeout time.Duration

	// BatchSize is the number of files scanned concurrently.
	BatchSize int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .stubscan is searched in the current and home directories.
	ConfigFilePath string

	// File holds the contents of the configuration file.
	File *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When empty, the report goes to stdout.
	ReportFile string

	// SaveToDB stores each scan report in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/stubscan on Linux).
	DBDir string

	// LookupTimeout is the HTTP timeout for shader metadata lookups.
	LookupTimeout time.Duration

	// WatchDebounce is the quiet period before a changed file is rescanned.
	WatchDebounce time.Duration
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Sources:       []string{DefaultSourcePath},
		AppSourcePath: DefaultAppSourcePath,
		Threshold:     DefaultThreshold,
		Markers:       DefaultMarkers(),
		MatchTimeout:  DefaultMatchTimeout,
		BatchSize:     DefaultBatchSize,
		DBDir:         XDGDataDir(),
		LookupTimeout: DefaultLookupTimeout,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// XDGDataDir returns the XDG data directory for stubscan.
// On Linux: ~/.local/share/stubscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for stubscan.
// On Linux: ~/.config/stubscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 && c.SourceDir == "" {
		return ErrNoSource
	}

	if c.Threshold <= 0 {
		return ErrInvalidThreshold
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MatchTimeout < 0 {
		return ErrInvalidMatchTimeout
	}

	for _, m := range c.Markers {
		if m == "" {
			return ErrEmptyMarker
		}
	}

	return nil
}

// SourceSettings returns the effective classification settings for a source
// file: the global threshold, markers and pattern, overridden by the
// configuration file's per-source entry when one exists.
func (c *Config) SourceSettings(path string) SourceConfig {
	base := SourceConfig{
		Threshold: c.Threshold,
		Markers:   c.Markers,
		Pattern:   c.Pattern,
	}
	if c.File == nil {
		return base
	}

	override, ok := c.File.lookupSource(path)
	if !ok {
		return base
	}
	return mergeSourceConfig(base, override)
}
