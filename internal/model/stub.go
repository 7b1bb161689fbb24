package model

import "strconv"

// StubReportLine is a registration classified as a likely stub.
// It is derived from a Registration and never modified afterwards.
type StubReportLine struct {
	// Identifier is the registration identifier.
	Identifier string `json:"identifier"`

	// CodeLength is the trimmed code block length in characters.
	CodeLength int `json:"code_length"`

	// Line is the 1-based source line of the registration.
	Line int `json:"line"`

	// Reasons lists every heuristic that matched, length first.
	Reasons []Reason `json:"reasons"`

	// Fingerprint is the SHA3-256 digest of the trimmed code block.
	Fingerprint string `json:"fingerprint"`
}

// NewStubReportLine builds a report line from a registration and the
// reasons it was flagged.
func NewStubReportLine(reg Registration, reasons []Reason) StubReportLine {
	return StubReportLine{
		Identifier:  reg.Identifier,
		CodeLength:  reg.CodeLength(),
		Line:        reg.Line,
		Reasons:     reasons,
		Fingerprint: reg.Fingerprint(),
	}
}

// String renders the line as "<identifier>: <length> chars".
func (s StubReportLine) String() string {
	return s.Identifier + ": " + strconv.Itoa(s.CodeLength) + " chars"
}

// HasReason reports whether the line was flagged for the given kind.
func (s StubReportLine) HasReason(kind ReasonKind) bool {
	for _, r := range s.Reasons {
		if r.Kind == kind {
			return true
		}
	}
	return false
}
