package report

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/stubscan/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one scan report.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	return w.WriteAll([]*model.ScanReport{report})
}

// WriteAll outputs one section per report and a single footer.
func (w *MarkdownWriter) WriteAll(reports []*model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Stub Report")
	md.PlainText("")

	for _, r := range reports {
		w.writeScan(md, r)
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeScan(md *markdown.Markdown, report *model.ScanReport) {
	md.H2(report.Source)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Threshold", strconv.Itoa(report.Threshold) + " chars"},
			{"Markers", codeList(report.Markers)},
			{"Registrations", strconv.Itoa(report.Registrations)},
			{"Stubs", strconv.Itoa(len(report.Stubs))},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")

	if report.Failed() {
		md.Cautionf("Scan failed: %s", report.ErrorMessage)
		md.PlainText("")
		return
	}

	if !report.HasStubs() {
		md.Tip("No likely stubbed shaders found.")
		md.PlainText("")
		return
	}

	md.Warningf("%d of %d registrations look like stubs.", len(report.Stubs), report.Registrations)
	md.PlainText("")

	rows := make([][]string, len(report.Stubs))
	for i, s := range report.Stubs {
		rows[i] = []string{
			"`" + s.Identifier + "`",
			strconv.Itoa(s.CodeLength),
			strconv.Itoa(s.Line),
			reasonLabels(s.Reasons),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Identifier", "Length", "Line", "Reasons"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, report)
}

// writePieChart writes a mermaid pie chart of the stub reasons.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.ScanReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Stub Reasons"),
		piechart.WithShowData(true),
	)
	for _, rc := range sortedReasonCounts(report) {
		chart.LabelAndIntValue(reasonLabel(rc.label), uint64(rc.count)) //nolint:gosec // counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteAudit outputs the audit summary and the missing ids.
func (w *MarkdownWriter) WriteAudit(report *model.AuditReport) (int, error) {
	name := filepath.Base(report.EffectsSource)

	md := markdown.NewMarkdown(w.output)
	md.H1("Registration Audit")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Application", "`" + report.AppSource + "`"},
			{"Effects", "`" + report.EffectsSource + "`"},
			{"Total Unique Effects Mentioned", strconv.Itoa(len(report.Mentioned))},
			{"Found in " + name, strconv.Itoa(len(report.Found))},
			{"Missing from " + name, strconv.Itoa(len(report.Missing))},
		},
	})
	md.PlainText("")

	if report.HasMissing() {
		md.Importantf("%d effect(s) are listed but never registered.", len(report.Missing))
		md.PlainText("")
		md.H2("Missing")
		md.PlainText("")
		md.BulletList(report.Missing...)
		md.PlainText("")
	} else {
		md.Tip("Every listed effect is registered.")
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteComparison outputs one table per non-empty diff category.
func (w *MarkdownWriter) WriteComparison(c *model.ScanComparison) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Stub History: " + c.Source)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows: [][]string{
			{"New", strconv.Itoa(len(c.Diff.New))},
			{"Resolved", strconv.Itoa(len(c.Diff.Resolved))},
			{"Changed", strconv.Itoa(len(c.Diff.Changed))},
			{"Unchanged", strconv.Itoa(len(c.Diff.Unchanged))},
		},
	})
	md.PlainText("")
	md.PlainTextf("Compared %s with %s.",
		c.PreviousScan.Format("2006-01-02 15:04:05 MST"),
		c.CurrentScan.Format("2006-01-02 15:04:05 MST"))
	md.PlainText("")

	if !c.Diff.HasChanges() {
		md.Note("No changes in stubs.")
		md.PlainText("")
	}

	sections := []struct {
		title string
		lines []model.StubReportLine
	}{
		{"New", c.Diff.New},
		{"Resolved", c.Diff.Resolved},
		{"Changed", c.Diff.Changed},
	}
	for _, sec := range sections {
		if len(sec.lines) == 0 {
			continue
		}
		md.H2(sec.title)
		md.PlainText("")
		rows := make([][]string, len(sec.lines))
		for i, l := range sec.lines {
			rows[i] = []string{"`" + l.Identifier + "`", strconv.Itoa(l.CodeLength), reasonLabels(l.Reasons)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Identifier", "Length", "Reasons"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// WriteShaders outputs the lookup results as a table.
func (w *MarkdownWriter) WriteShaders(infos []model.ShaderInfo) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Shader Lookup")
	md.PlainText("")

	rows := make([][]string, len(infos))
	for i, info := range infos {
		name, author := info.Name, info.Author
		if info.Error != "" {
			name = "❌ " + info.Error
		}
		if name == "" {
			name = "-"
		}
		if author == "" {
			author = "-"
		}
		rows[i] = []string{"`" + info.ID + "`", name, author}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Name", "Author"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [stubscan](https://github.com/nao1215/stubscan)*")
}

// statusText returns the status cell for a scan report.
func statusText(report *model.ScanReport) string {
	if report.Failed() {
		return "❌ Error"
	}
	return "✅ Complete"
}

// codeList renders words as inline code separated by commas.
func codeList(words []string) string {
	if len(words) == 0 {
		return "-"
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "`" + w + "`"
	}
	return strings.Join(quoted, ", ")
}
