// Package model defines the core data structures used throughout stubscan.
//
// This package contains the following main types:
//   - Registration: one register(...) call found in a source file
//   - StubReportLine: a registration classified as a likely stub
//   - ScanReport: the stubs found in one source file plus scan metadata
//   - AuditReport: effect ids listed by the app versus those registered
//   - ShaderInfo: metadata resolved for a Shadertoy shader id
//   - StubDiff: the difference between two scans of the same source
//
// Models live in their own package so the extract, scanner, report, and
// database packages can share them without import cycles. All of them
// serialize to JSON for report output and history storage.
package model
