package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/stubscan/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "stubscan.db"

// storedTimeFormat keeps scan times sortable as text.
const storedTimeFormat = "2006-01-02 15:04:05.000000000"

// ErrFailedReport is returned when saving a report whose scan failed.
var ErrFailedReport = errors.New("cannot save a failed scan report")

// HistoryDB provides SQLite-based storage for scan reports.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a scan with --save first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		scanned_at TEXT NOT NULL,
		threshold INTEGER NOT NULL,
		registrations INTEGER NOT NULL,
		stub_count INTEGER NOT NULL,
		report_json TEXT NOT NULL,
		reason_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_source ON scan_reports(source);
	CREATE INDEX IF NOT EXISTS idx_reports_scanned_at ON scan_reports(scanned_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SourceKey returns the key reports of path are stored under: the cleaned
// absolute path, or the cleaned path when it cannot be made absolute.
func SourceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// SaveScanReport stores report and returns its database ID.
func (h *HistoryDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	if report.Failed() {
		return 0, fmt.Errorf("%w: %s", ErrFailedReport, report.ErrorMessage)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}
	reasonJSON, err := json.Marshal(report.ReasonCounts())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize reason summary: %w", err)
	}

	query := `
	INSERT INTO scan_reports (source, scanned_at, threshold, registrations, stub_count, report_json, reason_summary)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		SourceKey(report.Source),
		report.DateScanned.UTC().Format(storedTimeFormat),
		report.Threshold,
		report.Registrations,
		len(report.Stubs),
		string(reportJSON),
		string(reasonJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestScanReport returns the most recent report for source, or nil
// when none was saved.
func (h *HistoryDB) GetLatestScanReport(ctx context.Context, source string) (*model.ScanReport, error) {
	reports, err := h.GetScanHistory(ctx, source, 1)
	if err != nil || len(reports) == 0 {
		return nil, err
	}
	return reports[0], nil
}

// GetScanHistory returns up to limit reports for source, newest first.
// A non-positive limit returns all of them.
func (h *HistoryDB) GetScanHistory(ctx context.Context, source string, limit int) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE source = ?
	ORDER BY scanned_at DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1
	}

	rows, err := h.db.QueryContext(ctx, query, SourceKey(source), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	reports := make([]*model.ScanReport, 0)
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		var report model.ScanReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			continue // Skip malformed reports
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}

// ListSources returns every source with saved reports, sorted.
func (h *HistoryDB) ListSources(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT source FROM scan_reports ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	sources := make([]string, 0)
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// ScanReportMetadata is the summary of a saved report, used to list
// history without decoding full reports.
type ScanReportMetadata struct {
	ID            int64
	Source        string
	ScannedAt     time.Time
	Threshold     int
	Registrations int
	StubCount     int

	// ReasonSummary maps reason labels ("short", "marker:TODO") to counts.
	ReasonSummary map[string]int
}

// GetScanHistoryWithMetadata returns the metadata of every report for
// source, newest first.
func (h *HistoryDB) GetScanHistoryWithMetadata(ctx context.Context, source string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, source, scanned_at, threshold, registrations, stub_count, reason_summary
	FROM scan_reports
	WHERE source = ?
	ORDER BY scanned_at DESC, id DESC
	`

	rows, err := h.db.QueryContext(ctx, query, SourceKey(source))
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	results := make([]ScanReportMetadata, 0)
	for rows.Next() {
		var meta ScanReportMetadata
		var scannedAt string
		var reasonJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Source, &scannedAt, &meta.Threshold,
			&meta.Registrations, &meta.StubCount, &reasonJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.ScannedAt = parseTimestamp(scannedAt)

		meta.ReasonSummary = make(map[string]int)
		if reasonJSON.Valid && reasonJSON.String != "" {
			if err := json.Unmarshal([]byte(reasonJSON.String), &meta.ReasonSummary); err != nil {
				meta.ReasonSummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanReportByID returns the report with the given ID, or nil when it
// does not exist.
func (h *HistoryDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM scan_reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats are tried in order by parseTimestamp.
var timestampFormats = []string{
	storedTimeFormat,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

// parseTimestamp parses s as UTC, returning the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
