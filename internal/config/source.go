package config

import (
	"path/filepath"
)

// SourceConfig holds classification settings for a single source file.
type SourceConfig struct {
	// Threshold overrides the global length threshold for this file.
	// If zero, the global threshold is used.
	Threshold int `yaml:"threshold,omitempty"`

	// Markers replaces the global marker words for this file.
	Markers []string `yaml:"markers,omitempty"`

	// Pattern replaces the registration pattern for this file. It must
	// define the named groups "id" and "code".
	Pattern string `yaml:"pattern,omitempty"`
}

// ShadertoyConfig holds settings for the shader metadata lookup.
type ShadertoyConfig struct {
	// APIKey is the Shadertoy API key. Without it, lookups fall back to
	// reading the shader page.
	APIKey string `yaml:"apiKey,omitempty"`

	// BaseURL overrides the Shadertoy endpoint (used by tests and mirrors).
	BaseURL string `yaml:"baseURL,omitempty"`

	// UserAgent is sent with lookup requests. Shadertoy rejects some
	// default client user agents.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .stubscan configuration file.
type File struct {
	// Defaults applies to every source unless overridden in Sources.
	Defaults SourceConfig `yaml:"defaults,omitempty"`

	// Sources maps source file paths (as given on the command line, slash
	// separated) to their overrides.
	Sources map[string]SourceConfig `yaml:"sources,omitempty"`

	// Pattern is a custom registration pattern with named groups "id" and "code".
	Pattern string `yaml:"pattern,omitempty"`

	// Shadertoy configures the lookup command.
	Shadertoy ShadertoyConfig `yaml:"shadertoy,omitempty"`
}

// GetSourceConfig returns the configuration for a specific source path,
// merging the file's defaults with the per-source entry.
func (cf *File) GetSourceConfig(path string) SourceConfig {
	result := cf.Defaults
	if override, ok := cf.lookupSource(path); ok {
		result = mergeSourceConfig(result, override)
	}
	return result
}

// lookupSource finds the per-source entry for path, trying the path as given
// and then its cleaned, slash-separated form.
func (cf *File) lookupSource(path string) (SourceConfig, bool) {
	if cf.Sources == nil {
		return SourceConfig{}, false
	}
	if sc, ok := cf.Sources[path]; ok {
		return sc, true
	}
	sc, ok := cf.Sources[filepath.ToSlash(filepath.Clean(path))]
	return sc, ok
}

// mergeSourceConfig merges default settings with overrides. Non-zero
// override values win.
func mergeSourceConfig(defaults, override SourceConfig) SourceConfig {
	result := defaults
	if override.Threshold > 0 {
		result.Threshold = override.Threshold
	}
	if len(override.Markers) > 0 {
		result.Markers = append([]string(nil), override.Markers...)
	}
	if override.Pattern != "" {
		result.Pattern = override.Pattern
	}
	return result
}
