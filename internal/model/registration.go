package model

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/sha3"
)

// Registration is one register(<identifier>, <code block>, ...) call
// extracted from a source file. It is never mutated after extraction.
type Registration struct {
	// Identifier is the quoted string literal passed as the first argument.
	// Uniqueness is not enforced.
	Identifier string `json:"identifier"`

	// CodeBlock is the raw text between the block delimiters, untrimmed.
	CodeBlock string `json:"code_block"`

	// Line is the 1-based line of the source on which the call starts.
	Line int `json:"line"`
}

// TrimmedCode returns the code block without leading and trailing whitespace.
func (r Registration) TrimmedCode() string {
	return strings.TrimSpace(r.CodeBlock)
}

// CodeLength returns the length of the trimmed code block in characters
// (Unicode code points, not bytes).
func (r Registration) CodeLength() int {
	return utf8.RuneCountInString(r.TrimmedCode())
}

// Fingerprint returns a hex SHA3-256 digest of the trimmed code block.
// Two scans that report the same identifier with the same fingerprint saw
// an unchanged block.
func (r Registration) Fingerprint() string {
	sum := sha3.Sum256([]byte(r.TrimmedCode()))
	return hex.EncodeToString(sum[:])
}
