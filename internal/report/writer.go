package report

import (
	"io"
	"sort"
	"strings"

	"github.com/nao1215/stubscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs one scan report.
	Write(report *model.ScanReport) (int, error)

	// WriteAll outputs the reports of a multi-file scan in order.
	WriteAll(reports []*model.ScanReport) (int, error)

	// WriteAudit outputs a registration audit.
	WriteAudit(report *model.AuditReport) (int, error)

	// WriteComparison outputs the difference between two saved scans.
	WriteComparison(c *model.ScanComparison) (int, error)

	// WriteShaders outputs shader lookup results.
	WriteShaders(infos []model.ShaderInfo) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// reasonLabel renders a reason label such as "marker:TODO" for display,
// e.g. "Marker (TODO)". Marker words keep their case.
func reasonLabel(label string) string {
	// A Caser is stateful, so each call gets its own.
	title := cases.Title(language.English)
	kind, marker, ok := strings.Cut(label, ":")
	if !ok {
		return title.String(kind)
	}
	return title.String(kind) + " (" + marker + ")"
}

// reasonLabels joins the display labels of reasons.
func reasonLabels(reasons []model.Reason) string {
	labels := make([]string, len(reasons))
	for i, r := range reasons {
		labels[i] = reasonLabel(r.String())
	}
	return strings.Join(labels, ", ")
}

// reasonCount is one entry of a report's reason distribution.
type reasonCount struct {
	label string
	count int
}

// sortedReasonCounts returns the reason distribution of report, most
// frequent first and ties by label.
func sortedReasonCounts(report *model.ScanReport) []reasonCount {
	counts := report.ReasonCounts()
	out := make([]reasonCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, reasonCount{label: label, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].label < out[j].label
	})
	return out
}

// shaderName returns the display name of a lookup result.
func shaderName(info model.ShaderInfo) string {
	if info.Author == "" {
		return info.Name
	}
	return info.Name + " by " + info.Author
}
