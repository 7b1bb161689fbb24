package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/stubscan/internal/model"
)

// JSONWriter outputs reports in JSON format.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one report as a JSON object.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(report)
}

// WriteAll outputs a single report as an object and several as an array.
func (w *JSONWriter) WriteAll(reports []*model.ScanReport) (int, error) {
	if len(reports) == 1 {
		return w.writeJSON(reports[0])
	}
	return w.writeJSON(reports)
}

// WriteAudit outputs the audit report.
func (w *JSONWriter) WriteAudit(report *model.AuditReport) (int, error) {
	return w.writeJSON(report)
}

// WriteComparison outputs the comparison.
func (w *JSONWriter) WriteComparison(c *model.ScanComparison) (int, error) {
	return w.writeJSON(c)
}

// WriteShaders outputs the lookup results as an array.
func (w *JSONWriter) WriteShaders(infos []model.ShaderInfo) (int, error) {
	return w.writeJSON(infos)
}

// writeJSON encodes v, followed by a newline, in a single write.
// HTML characters are left unescaped so identifiers read as written.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
