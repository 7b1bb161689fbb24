package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/stubscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files scanned at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// Factory builds the Scanner for one source file, so per-file thresholds
// and markers can differ.
type Factory func(source string) (*Scanner, error)

// BatchScanner scans multiple source files concurrently.
// It uses errgroup to bound the number of files read at once.
type BatchScanner struct {
	// factory creates a Scanner for each file.
	factory Factory

	// concurrency is the maximum number of concurrent scans.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchScanner.
type BatchOption func(*BatchScanner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchScanner) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchScanner) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchScanner creates a new BatchScanner.
func NewBatchScanner(factory Factory, opts ...BatchOption) *BatchScanner {
	bs := &BatchScanner{
		factory:     factory,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bs)
	}

	if bs.logger == nil {
		bs.logger = slog.Default()
	}

	return bs
}

// ScanAll scans every source and returns one report per source, in input
// order. A file that fails records its error in its report; the batch keeps
// going. The returned error is non-nil only when ctx is cancelled, in which
// case reports for unstarted files are nil.
func (bs *BatchScanner) ScanAll(ctx context.Context, sources []string) ([]*model.ScanReport, error) {
	results := make([]*model.ScanReport, len(sources))
	var mu sync.Mutex

	err := bs.ScanAllWithCallback(ctx, sources, func(report *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()
		results[index] = report
	})
	return results, err
}

// ScanAllWithCallback scans every source and calls callback as each scan
// completes. The callback runs on the scanning goroutine and must be safe
// for concurrent use.
func (bs *BatchScanner) ScanAllWithCallback(
	ctx context.Context,
	sources []string,
	callback func(report *model.ScanReport, index int),
) error {
	bs.logger.Info("starting batch scan",
		"total_sources", len(sources),
		"concurrency", bs.concurrency,
	)

	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var report *model.ScanReport
			s, err := bs.factory(source)
			if err != nil {
				report = model.NewScanReport(source)
				report.SetError(err)
			} else {
				report = s.ScanReport(source)
			}

			if report.Failed() {
				bs.logger.Warn("scan failed",
					"source", source,
					"error", report.ErrorMessage,
				)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bs.logger.Info("batch scan complete",
		"total_sources", len(sources),
		"elapsed", time.Since(startTime),
	)

	return err
}
