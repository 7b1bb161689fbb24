package scanner

import "errors"

// Scan errors. They end the scan of the affected file; there is no partial
// result.
var (
	// ErrFileNotFound is returned when the source path does not exist.
	// The returned error also matches fs.ErrNotExist.
	ErrFileNotFound = errors.New("source file not found")

	// ErrRead is returned when the source cannot be read or decoded.
	ErrRead = errors.New("failed to read source file")

	// ErrInvalidText is returned (together with ErrRead) when the source is
	// not valid UTF-8 text.
	ErrInvalidText = errors.New("source is not valid UTF-8 text")
)
