// Package scanner locates likely stub registrations in JavaScript sources.
//
// A scan reads one file, extracts its register(...) calls with the extract
// package, trims each code block, and classifies it as a stub when the
// trimmed block is shorter than the threshold or contains a marker word.
// Results keep source order.
//
// A single-file scan is synchronous. BatchScanner scans several files
// concurrently using errgroup and returns one report per file in input order.
package scanner
