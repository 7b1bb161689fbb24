package model

import "time"

// ScanReport is the result of scanning one source file.
type ScanReport struct {
	// Source is the scanned file path as given by the user.
	Source string `json:"source"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Threshold is the length threshold used for classification.
	Threshold int `json:"threshold"`

	// Markers are the marker words used for classification.
	Markers []string `json:"markers"`

	// Registrations is the number of register(...) calls matched.
	Registrations int `json:"registrations"`

	// Stubs are the registrations classified as stubs, in source order.
	Stubs []StubReportLine `json:"stubs"`

	// Error holds the scan failure, if any. Not serialized; see ErrorMessage.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for JSON output and storage.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates an empty report for source stamped with the current time.
func NewScanReport(source string) *ScanReport {
	return &ScanReport{
		Source:      source,
		DateScanned: time.Now(),
		Stubs:       make([]StubReportLine, 0),
	}
}

// SetError records a scan failure on the report.
func (r *ScanReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Failed reports whether the scan failed.
func (r *ScanReport) Failed() bool {
	return r.Error != nil || r.ErrorMessage != ""
}

// HasStubs reports whether any stub was found.
func (r *ScanReport) HasStubs() bool {
	return len(r.Stubs) > 0
}

// ReasonCounts returns how many stubs were flagged by each reason label
// ("short", "marker:TODO", ...). A stub with two reasons counts twice.
func (r *ScanReport) ReasonCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.Stubs {
		for _, reason := range s.Reasons {
			counts[reason.String()]++
		}
	}
	return counts
}
