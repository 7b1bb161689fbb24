// Package database provides SQLite-based storage of scan history.
//
// HistoryDB stores each saved scan report as JSON together with its stub
// count and reason summary, keyed by the absolute path of the scanned
// source. The history command reads it back to list runs and to compare the
// latest two scans of a source.
//
// modernc.org/sqlite is a CGO-free driver, so the binary cross-compiles and
// the database is a single file under the XDG data directory.
package database
