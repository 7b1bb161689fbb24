package model

import "time"

// StubDiff is the difference between an earlier and a later scan of the
// same source.
type StubDiff struct {
	// New are stubs present only in the later scan.
	New []StubReportLine `json:"new"`

	// Resolved are stubs present only in the earlier scan.
	Resolved []StubReportLine `json:"resolved"`

	// Changed are stubs present in both whose code block changed.
	// The later line is recorded.
	Changed []StubReportLine `json:"changed"`

	// Unchanged are stubs present in both with identical code blocks.
	Unchanged []StubReportLine `json:"unchanged"`
}

// HasChanges reports whether anything other than unchanged stubs was found.
func (d *StubDiff) HasChanges() bool {
	return len(d.New) > 0 || len(d.Resolved) > 0 || len(d.Changed) > 0
}

// CompareScanReports diffs two reports by identifier. Results keep the
// source order of the report they are taken from. Duplicate identifiers are
// matched in order of appearance.
func CompareScanReports(previous, current *ScanReport) *StubDiff {
	diff := &StubDiff{
		New:       make([]StubReportLine, 0),
		Resolved:  make([]StubReportLine, 0),
		Changed:   make([]StubReportLine, 0),
		Unchanged: make([]StubReportLine, 0),
	}

	prevByID := make(map[string][]StubReportLine)
	if previous != nil {
		for _, s := range previous.Stubs {
			prevByID[s.Identifier] = append(prevByID[s.Identifier], s)
		}
	}

	if current != nil {
		for _, s := range current.Stubs {
			queue := prevByID[s.Identifier]
			if len(queue) == 0 {
				diff.New = append(diff.New, s)
				continue
			}
			prev := queue[0]
			prevByID[s.Identifier] = queue[1:]

			if prev.Fingerprint == s.Fingerprint {
				diff.Unchanged = append(diff.Unchanged, s)
			} else {
				diff.Changed = append(diff.Changed, s)
			}
		}
	}

	if previous != nil {
		// Whatever was not consumed above has no counterpart in current.
		consumed := make(map[string]int)
		for _, s := range previous.Stubs {
			remaining := prevByID[s.Identifier]
			total := countIdentifier(previous.Stubs, s.Identifier)
			if consumed[s.Identifier] >= total-len(remaining) {
				diff.Resolved = append(diff.Resolved, s)
			}
			consumed[s.Identifier]++
		}
	}

	return diff
}

// countIdentifier counts the lines in stubs with the given identifier.
func countIdentifier(stubs []StubReportLine, id string) int {
	n := 0
	for _, s := range stubs {
		if s.Identifier == id {
			n++
		}
	}
	return n
}

// ScanComparison is a StubDiff together with the scans it was computed from.
type ScanComparison struct {
	Source       string    `json:"source"`
	PreviousScan time.Time `json:"previous_scan"`
	CurrentScan  time.Time `json:"current_scan"`
	Diff         *StubDiff `json:"diff"`
}

// NewScanComparison compares previous with current. Both must be non-nil.
func NewScanComparison(previous, current *ScanReport) *ScanComparison {
	return &ScanComparison{
		Source:       current.Source,
		PreviousScan: previous.DateScanned,
		CurrentScan:  current.DateScanned,
		Diff:         CompareScanReports(previous, current),
	}
}
