// Package config provides configuration structures and utilities for stubscan.
// It defines the scan options (source files, classification threshold, marker
// words), the optional .stubscan YAML file, and report output preferences.
package config
