package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/stubscan/internal/model"
)

// StubHeader is the first line of a plain text scan report.
const StubHeader = "Likely Stubbed Shaders:"

// SimpleWriter outputs plain text reports.
type SimpleWriter struct {
	baseWriter

	// details appends the line number and reasons to each stub line.
	details bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithDetails appends "(line N; reasons)" to each stub line.
func WithDetails(details bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.details = details
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the header followed by one line per stub.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder
	w.writeStubs(&sb, report)
	return io.WriteString(w.output, sb.String())
}

// WriteAll outputs each report. With more than one report, each is preceded
// by a "==> source <==" line and separated by a blank line.
func (w *SimpleWriter) WriteAll(reports []*model.ScanReport) (int, error) {
	if len(reports) == 1 {
		return w.Write(reports[0])
	}

	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "==> %s <==\n", r.Source)
		if r.Failed() {
			fmt.Fprintf(&sb, "Error: %s\n", r.ErrorMessage)
			continue
		}
		w.writeStubs(&sb, r)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeStubs(sb *strings.Builder, report *model.ScanReport) {
	sb.WriteString(StubHeader)
	sb.WriteString("\n")
	for _, s := range report.Stubs {
		sb.WriteString(s.String())
		if w.details {
			fmt.Fprintf(sb, " (line %d; %s)", s.Line, model.JoinReasons(s.Reasons))
		}
		sb.WriteString("\n")
	}
}

// WriteAudit outputs the audit summary followed by the missing ids as a
// comma separated list.
func (w *SimpleWriter) WriteAudit(report *model.AuditReport) (int, error) {
	name := filepath.Base(report.EffectsSource)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total Unique Effects Mentioned: %d\n", len(report.Mentioned))
	fmt.Fprintf(&sb, "Found in %s: %d\n", name, len(report.Found))
	fmt.Fprintf(&sb, "Missing from %s:\n", name)
	sb.WriteString(strings.Join(report.Missing, ", "))
	sb.WriteString("\n")
	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs each diff category that is not empty.
func (w *SimpleWriter) WriteComparison(c *model.ScanComparison) (int, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Comparing %s\n", c.Source)
	fmt.Fprintf(&sb, "  previous: %s\n", c.PreviousScan.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "  current:  %s\n", c.CurrentScan.Format("2006-01-02 15:04:05 MST"))

	if !c.Diff.HasChanges() {
		sb.WriteString("\nNo changes in stubs.\n")
	}

	sections := []struct {
		title string
		lines []model.StubReportLine
	}{
		{"New stubs", c.Diff.New},
		{"Resolved stubs", c.Diff.Resolved},
		{"Changed stubs", c.Diff.Changed},
		{"Unchanged stubs", c.Diff.Unchanged},
	}
	for _, sec := range sections {
		if len(sec.lines) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s (%d):\n", sec.title, len(sec.lines))
		for _, l := range sec.lines {
			fmt.Fprintf(&sb, "  %s\n", l.String())
		}
	}
	return io.WriteString(w.output, sb.String())
}

// WriteShaders outputs one line per lookup result.
func (w *SimpleWriter) WriteShaders(infos []model.ShaderInfo) (int, error) {
	var sb strings.Builder
	for _, info := range infos {
		if info.Error != "" {
			fmt.Fprintf(&sb, "%s: error: %s\n", info.ID, info.Error)
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", info.ID, shaderName(info))
	}
	return io.WriteString(w.output, sb.String())
}
