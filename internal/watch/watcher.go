package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 300 * time.Millisecond

// minTick is the shortest interval at which pending changes are checked.
const minTick = 10 * time.Millisecond

// ErrNoSources is returned when New is called without sources.
var ErrNoSources = errors.New("no sources to watch")

// Callback receives a source path, as it was given to New, after it changed.
type Callback func(source string)

// Watcher calls a Callback when watched source files change.
type Watcher struct {
	watcher  *fsnotify.Watcher
	sources  map[string]string
	callback Callback
	debounce time.Duration
	pending  map[string]time.Time
	logger   *slog.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a Watcher for sources. The directory of every source must exist.
func New(sources []string, callback Callback, opts ...Option) (*Watcher, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		sources:  make(map[string]string, len(sources)),
		callback: callback,
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	dirs := make(map[string]bool)
	for _, src := range sources {
		abs, err := filepath.Abs(src)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", src, err)
		}
		w.sources[abs] = src

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
		w.logger.Debug("watching directory", "dir", dir)
	}

	return w, nil
}

// Run processes events until ctx is done, then releases the watcher.
// The callback runs on the calling goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	tick := w.debounce / 4
	if tick < minTick {
		tick = minTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

// handleEvent records writes and creates of watched files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.sources[abs]; !ok {
		return
	}
	w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
	w.pending[abs] = time.Now()
}

// flush reports every pending file that has been quiet for the debounce window.
func (w *Watcher) flush(now time.Time) {
	for abs, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, abs)
		w.callback(w.sources[abs])
	}
}
