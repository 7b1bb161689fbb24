package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/nao1215/stubscan/internal/extract"
	"github.com/nao1215/stubscan/internal/model"
)

// Scanner reads source files and reports likely stub registrations.
type Scanner struct {
	extractor  *extract.Extractor
	classifier *Classifier
	logger     *slog.Logger
}

// settings collects Scanner options before construction.
type settings struct {
	threshold    int
	markers      []string
	pattern      string
	matchTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Scanner.
type Option func(*settings)

// WithThreshold sets the stub length threshold.
func WithThreshold(n int) Option {
	return func(s *settings) {
		s.threshold = n
	}
}

// WithMarkers sets the marker words. An empty, non-nil slice disables marker checks.
func WithMarkers(markers []string) Option {
	return func(s *settings) {
		s.markers = markers
	}
}

// WithPattern sets a custom registration pattern.
func WithPattern(pattern string) Option {
	return func(s *settings) {
		s.pattern = pattern
	}
}

// WithMatchTimeout bounds each evaluation of a custom pattern. Zero means no limit.
func WithMatchTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.matchTimeout = d
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New creates a Scanner.
func New(opts ...Option) (*Scanner, error) {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	ex, err := extract.New(
		extract.WithPattern(s.pattern),
		extract.WithMatchTimeout(s.matchTimeout),
	)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		extractor:  ex,
		classifier: NewClassifier(s.threshold, s.markers),
		logger:     s.logger,
	}, nil
}

// Scan reads the file at path and returns its stub report lines in source
// order. A file without registrations yields an empty slice.
//
// The error matches ErrFileNotFound when path does not exist and ErrRead for
// any other read or decoding failure. A custom pattern that times out yields
// extract.ErrMatchTimeout.
func Scan(path string) ([]model.StubReportLine, error) {
	s, err := New()
	if err != nil {
		return nil, err
	}
	return s.Scan(path)
}

// Scan reads the file at path and returns its stub report lines in source order.
func (s *Scanner) Scan(path string) ([]model.StubReportLine, error) {
	content, err := readSource(path)
	if err != nil {
		return nil, err
	}
	stubs, _, err := s.ScanContent(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stubs, nil
}

// ScanContent classifies the registrations in content. It also returns the
// total number of registrations matched.
func (s *Scanner) ScanContent(content string) ([]model.StubReportLine, int, error) {
	regs, err := s.extractor.Extract(content)
	if err != nil {
		return nil, 0, err
	}

	stubs := s.classifier.StubLines(regs)
	for _, st := range stubs {
		s.logger.Debug("stub found",
			"identifier", st.Identifier,
			"line", st.Line,
			"length", st.CodeLength,
			"reasons", model.JoinReasons(st.Reasons),
		)
	}
	return stubs, len(regs), nil
}

// ScanReport scans path and returns a report. Failures are recorded in the
// report rather than returned.
func (s *Scanner) ScanReport(path string) *model.ScanReport {
	report := model.NewScanReport(path)
	report.Threshold = s.classifier.Threshold()
	report.Markers = s.classifier.Markers()

	s.logger.Info("scanning source", "source", path)

	content, err := readSource(path)
	if err != nil {
		report.SetError(err)
		return report
	}

	stubs, total, err := s.ScanContent(content)
	if err != nil {
		report.SetError(fmt.Errorf("%s: %w", path, err))
		return report
	}

	report.Registrations = total
	report.Stubs = stubs

	s.logger.Info("scan complete",
		"source", path,
		"registrations", total,
		"stubs", len(stubs),
	)
	return report
}

// readSource reads the whole file as UTF-8 text.
func readSource(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Scanning user-specified files is the purpose of this tool
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %w: %s", ErrRead, ErrInvalidText, path)
	}
	return string(data), nil
}
