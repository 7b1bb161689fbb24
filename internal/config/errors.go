package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Sentinel errors let callers use errors.Is() while keeping the messages
// readable on the command line.
var (
	// ErrNoSource is returned when no source file or directory is specified.
	ErrNoSource = errors.New("no source specified: provide a file path or use --dir")

	// ErrInvalidThreshold is returned when the length threshold is not positive.
	// A threshold of zero would never flag anything by length.
	ErrInvalidThreshold = errors.New("invalid threshold: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMatchTimeout is returned when the pattern match timeout is negative.
	ErrInvalidMatchTimeout = errors.New("invalid match timeout: must not be negative")

	// ErrEmptyMarker is returned when a marker word is the empty string.
	// An empty marker is contained in every code block and would flag everything.
	ErrEmptyMarker = errors.New("invalid marker: marker words must not be empty")
)
