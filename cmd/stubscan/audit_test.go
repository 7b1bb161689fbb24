package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/stubscan/internal/audit"
	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/model"
)

const auditApp = `
const windows = [
  { title: 'Demos', effects: ['glow', 'blur', 'ripple'] },
  { title: 'More',  effects: ["glow", 'tunnel'] },
];
`

// TestNewAuditCmd tests the audit command creation.
func TestNewAuditCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAuditCmd()

	if cmd.Use != "audit [effects-file]" {
		t.Errorf("expected use 'audit [effects-file]', got %q", cmd.Use)
	}

	flag := cmd.Flags().Lookup("app")
	if flag == nil {
		t.Fatal("expected app flag")
	}
	if flag.Shorthand != "a" || flag.DefValue != config.DefaultAppSourcePath {
		t.Errorf("unexpected app flag %q %q", flag.Shorthand, flag.DefValue)
	}
}

// TestRunAuditCmd tests audit execution.
func TestRunAuditCmd(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (string, string) {
		t.Helper()
		dir := t.TempDir()
		app := writeEffects(t, dir, "app.js", auditApp)
		effects := writeEffects(t, dir, "effects.js", exampleEffects()...)
		return app, effects
	}

	t.Run("text report", func(t *testing.T) {
		t.Parallel()

		app, effects := setup(t)
		stdout, _, err := executeCommand(t, "audit", "--app", app, effects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Total Unique Effects Mentioned: 4\n" +
			"Found in effects.js: 2\n" +
			"Missing from effects.js:\n" +
			"ripple, tunnel\n"
		if stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
	})

	t.Run("json report", func(t *testing.T) {
		t.Parallel()

		app, effects := setup(t)
		stdout, _, err := executeCommand(t, "audit", "--app", app, "--json", effects)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.AuditReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if strings.Join(got.Missing, ",") != "ripple,tunnel" {
			t.Errorf("unexpected missing list %v", got.Missing)
		}
	})

	t.Run("missing app file", func(t *testing.T) {
		t.Parallel()

		_, effects := setup(t)
		_, _, err := executeCommand(t, "audit", "--app", filepath.Join(t.TempDir(), "app.js"), effects)
		if !errors.Is(err, audit.ErrSourceNotFound) {
			t.Errorf("expected ErrSourceNotFound, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		app, effects := setup(t)
		_, _, err := executeCommand(t, "audit", "--app", app, "--json", "--markdown", effects)
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
