// Package report renders scan, audit, history and lookup results.
//
// Writers:
//   - SimpleWriter: plain text for the terminal. A single scan report is
//     printed as the "Likely Stubbed Shaders:" header followed by one
//     "<identifier>: <length> chars" line per stub.
//   - JSONWriter: structured JSON for tool integration.
//   - MarkdownWriter: Markdown with tables, a mermaid pie chart of stub
//     reasons, and GitHub alerts.
//
// Writers implement the Writer interface, so the CLI selects one from the
// --json and --markdown flags and uses it the same way.
package report
