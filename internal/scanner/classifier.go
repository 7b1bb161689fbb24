package scanner

import (
	"strings"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/model"
)

// Classifier decides whether a registration is a likely stub.
type Classifier struct {
	// threshold is the trimmed length (in characters) below which a block is short.
	threshold int

	// markers are case-sensitive substrings that flag a block at any length.
	markers []string
}

// NewClassifier creates a Classifier. Non-positive thresholds fall back to
// config.DefaultThreshold; a nil marker list falls back to config.DefaultMarkers.
func NewClassifier(threshold int, markers []string) *Classifier {
	if threshold <= 0 {
		threshold = config.DefaultThreshold
	}
	if markers == nil {
		markers = config.DefaultMarkers()
	}
	return &Classifier{
		threshold: threshold,
		markers:   append([]string(nil), markers...),
	}
}

// Threshold returns the length threshold.
func (c *Classifier) Threshold() int {
	return c.threshold
}

// Markers returns a copy of the marker words.
func (c *Classifier) Markers() []string {
	return append([]string(nil), c.markers...)
}

// Classify returns the reasons reg is a stub, or nil when it is not.
// Every matching heuristic is reported: length first, then markers in
// configuration order.
func (c *Classifier) Classify(reg model.Registration) []model.Reason {
	code := reg.TrimmedCode()

	var reasons []model.Reason
	if reg.CodeLength() < c.threshold {
		reasons = append(reasons, model.ShortReason())
	}
	for _, marker := range c.markers {
		if strings.Contains(code, marker) {
			reasons = append(reasons, model.MarkerReason(marker))
		}
	}
	return reasons
}

// StubLines classifies every registration and returns the stubs in order.
func (c *Classifier) StubLines(regs []model.Registration) []model.StubReportLine {
	lines := make([]model.StubReportLine, 0)
	for _, reg := range regs {
		if reasons := c.Classify(reg); len(reasons) > 0 {
			lines = append(lines, model.NewStubReportLine(reg, reasons))
		}
	}
	return lines
}
