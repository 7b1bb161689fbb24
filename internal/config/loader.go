package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".stubscan"

// xdgConfigFile is the file name looked up in the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a .stubscan YAML file. Unknown keys are rejected so
// a misspelled setting is not silently ignored. An empty file is valid.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := cf.validate(); err != nil {
		return nil, err
	}

	if cf.Sources == nil {
		cf.Sources = make(map[string]SourceConfig)
	}
	return &cf, nil
}

// validate rejects values Config.Validate would reject after merging.
func (cf *File) validate() error {
	if err := cf.Defaults.validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for path, sc := range cf.Sources {
		if err := sc.validate(); err != nil {
			return fmt.Errorf("sources[%s]: %w", path, err)
		}
	}
	return nil
}

func (sc SourceConfig) validate() error {
	if sc.Threshold < 0 {
		return ErrInvalidThreshold
	}
	for _, m := range sc.Markers {
		if m == "" {
			return ErrEmptyMarker
		}
	}
	return nil
}

// FindConfigFile returns the configuration file to load, or "" when there
// is none. An explicit configPath is returned only if it exists. Otherwise
// these are tried in order:
//
//	./.stubscan
//	$XDG_CONFIG_HOME/stubscan/config.yaml
//	~/.stubscan
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if fileExists(configPath) {
			return configPath
		}
		return ""
	}

	for _, candidate := range searchPaths() {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// searchPaths lists the implicit configuration file locations.
func searchPaths() []string {
	paths := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	paths = append(paths, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
