package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/stubscan/internal/config"
)

// syncBuffer is a bytes.Buffer safe for use from the watcher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// TestNewWatchCmd tests the watch command creation.
func TestNewWatchCmd(t *testing.T) {
	t.Parallel()

	cmd := NewWatchCmd()

	flag := cmd.Flags().Lookup("debounce")
	if flag == nil {
		t.Fatal("expected debounce flag")
	}
	if flag.DefValue != config.DefaultWatchDebounce.String() {
		t.Errorf("expected default %s, got %s", config.DefaultWatchDebounce, flag.DefValue)
	}
	if cmd.Flags().Lookup("threshold") == nil {
		t.Error("expected scan flags on the watch command")
	}
}

// TestRunWatch tests that a change to a watched source prints a new report.
func TestRunWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writeEffects(t, dir, "effects.js", exampleEffects()...)

	cfg := config.NewConfig()
	cfg.Sources = []string{src}
	cfg.WatchDebounce = 50 * time.Millisecond

	var out, status syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, cfg, &out, &status, false, slog.New(slog.DiscardHandler))
	}()

	waitFor(t, "watcher start", func() bool {
		return strings.Contains(status.String(), "Watching 1 source(s)")
	})
	if !strings.HasPrefix(out.String(), "Likely Stubbed Shaders:\nglow: 80 chars\n") {
		t.Errorf("expected initial report, got %q", out.String())
	}

	writeEffects(t, dir, "effects.js", registration("fresh", "TODO"))

	waitFor(t, "rescan report", func() bool {
		return strings.Contains(out.String(), "fresh: 4 chars")
	})
	if !strings.Contains(status.String(), src+" changed, rescanning...") {
		t.Errorf("expected rescan notice, got %q", status.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

// TestRunWatchMissingDirectory tests that an unwatchable source is an error.
func TestRunWatchMissingDirectory(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Sources = []string{filepath.Join(t.TempDir(), "missing", "effects.js")}

	var out, status syncBuffer
	err := runWatch(context.Background(), cfg, &out, &status, false, slog.New(slog.DiscardHandler))
	if err == nil {
		t.Error("expected error for a source in a missing directory")
	}
	if !strings.Contains(status.String(), "Scan error") {
		t.Errorf("expected initial scan error on status, got %q", status.String())
	}
}
