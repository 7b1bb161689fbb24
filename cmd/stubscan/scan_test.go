package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/stubscan/internal/config"
	"github.com/nao1215/stubscan/internal/extract"
	"github.com/nao1215/stubscan/internal/model"
	"github.com/nao1215/stubscan/internal/scanner"
)

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeConfigFile writes a configuration file so tests never pick up a
// .stubscan from the working or home directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stubscan.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func registration(id, code string) string {
	return "register('" + id + "', `" + code + "`, {});\n"
}

// writeEffects writes an effects file made of registrations and returns its path.
func writeEffects(t *testing.T, dir, name string, regs ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(regs, "")), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// exampleEffects is the glow/blur example: glow is 80 characters padded
// with 60 spaces, blur is 300 characters without markers.
func exampleEffects() []string {
	return []string{
		registration("glow", strings.Repeat(" ", 30)+strings.Repeat("g", 80)+strings.Repeat(" ", 30)),
		registration("blur", strings.Repeat("b", 300)),
	}
}

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [file...]" {
			t.Errorf("expected use 'scan [file...]', got %q", cmd.Use)
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"dir", "d", ""},
		{"batch", "b", "4"},
		{"threshold", "t", "150"},
		{"markers", "", "[TODO,Placeholder]"},
		{"pattern", "p", ""},
		{"match-timeout", "", "5s"},
		{"config", "c", ""},
		{"save", "s", "false"},
		{"db-dir", "", ""},
		{"details", "D", "false"},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"output", "o", ""},
	}
	for _, tt := range flags {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

// TestBuildConfig tests flag and configuration file handling.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, args ...string) (*config.Config, error) {
		t.Helper()
		cmd := NewScanCmd()
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		return buildConfig(cmd, cmd.Flags().Args())
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := parse(t, "-c", writeConfigFile(t, ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Sources) != 1 || cfg.Sources[0] != config.DefaultSourcePath {
			t.Errorf("expected default source, got %v", cfg.Sources)
		}
		if cfg.Threshold != config.DefaultThreshold {
			t.Errorf("expected threshold %d, got %d", config.DefaultThreshold, cfg.Threshold)
		}
		if cfg.SaveToDB {
			t.Error("expected saving to be off by default")
		}
	})

	t.Run("positional files replace the default source", func(t *testing.T) {
		t.Parallel()

		cfg, err := parse(t, "-c", writeConfigFile(t, ""), "a.js", "b.js")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Join(cfg.Sources, ",") != "a.js,b.js" {
			t.Errorf("unexpected sources %v", cfg.Sources)
		}
	})

	t.Run("dir alone drops the default source", func(t *testing.T) {
		t.Parallel()

		cfg, err := parse(t, "-c", writeConfigFile(t, ""), "--dir", "src/js")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Sources) != 0 || cfg.SourceDir != "src/js" {
			t.Errorf("unexpected sources %v dir %q", cfg.Sources, cfg.SourceDir)
		}
	})

	t.Run("file defaults apply unless flags are set", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, "defaults:\n  threshold: 90\n  markers: [FIXME]\npattern: 'x(?<id>a)(?<code>b)'\n")

		cfg, err := parse(t, "-c", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Threshold != 90 {
			t.Errorf("expected threshold 90, got %d", cfg.Threshold)
		}
		if strings.Join(cfg.Markers, ",") != "FIXME" {
			t.Errorf("expected markers [FIXME], got %v", cfg.Markers)
		}
		if cfg.Pattern != "x(?<id>a)(?<code>b)" {
			t.Errorf("expected pattern from file, got %q", cfg.Pattern)
		}

		cfg, err = parse(t, "-c", path, "--threshold", "40", "--markers", "XXX")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Threshold != 40 || strings.Join(cfg.Markers, ",") != "XXX" {
			t.Errorf("expected flags to win, got %d %v", cfg.Threshold, cfg.Markers)
		}
	})

	t.Run("explicit missing config file", func(t *testing.T) {
		t.Parallel()

		_, err := parse(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, err := parse(t, "-c", writeConfigFile(t, ""), "--json", "--markdown")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestRunScan tests scan execution end to end.
func TestRunScan(t *testing.T) {
	t.Parallel()

	t.Run("prints the example report", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", exampleEffects()...)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Likely Stubbed Shaders:\nglow: 80 chars\n"
		if stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
	})

	t.Run("no registrations prints header only", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", "const x = 1;\n")
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "Likely Stubbed Shaders:\n" {
			t.Errorf("expected header only, got %q", stdout)
		}
	})

	t.Run("missing file fails without output", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "effects.js")
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), missing)
		if !errors.Is(err, scanner.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
		if stdout != "" {
			t.Errorf("expected no output, got %q", stdout)
		}
	})

	t.Run("details show line and reasons", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js",
			registration("a", strings.Repeat("a", 200)),
			registration("b", "// TODO"),
		)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--details", src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "b: 7 chars (line 2; short, marker:TODO)") {
			t.Errorf("expected details line, got %q", stdout)
		}
	})

	t.Run("threshold flag", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", exampleEffects()...)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--threshold", "50", src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "Likely Stubbed Shaders:\n" {
			t.Errorf("expected no stubs below 50, got %q", stdout)
		}
	})

	t.Run("per-source threshold from config file", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", exampleEffects()...)
		cfgPath := writeConfigFile(t, "sources:\n  \""+filepath.ToSlash(src)+"\":\n    threshold: 400\n")

		stdout, _, err := executeCommand(t, "scan", "-c", cfgPath, src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "blur: 300 chars") {
			t.Errorf("expected blur under the per-source threshold, got %q", stdout)
		}
	})

	t.Run("per-source pattern from config file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		legacy := writeEffects(t, dir, "legacy.js", "effect(\"old\", `x`);\n")
		current := writeEffects(t, dir, "effects.js", registration("new", "y"), "effect(\"skipped\", `z`);\n")
		cfgPath := writeConfigFile(t, "sources:\n  \""+filepath.ToSlash(legacy)+"\":\n"+
			"    pattern: 'effect\\(\"(?<id>[^\"]+)\",\\s*`(?<code>.*?)`'\n")

		stdout, _, err := executeCommand(t, "scan", "-c", cfgPath, legacy, current)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "old: 1 chars") || !strings.Contains(stdout, "new: 1 chars") {
			t.Errorf("expected both files scanned with their own pattern, got %q", stdout)
		}
		if strings.Contains(stdout, "skipped") {
			t.Errorf("per-source pattern leaked to another file: %q", stdout)
		}
	})

	t.Run("json output", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", exampleEffects()...)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--json", src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.ScanReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.Registrations != 2 || len(got.Stubs) != 1 || got.Stubs[0].Identifier != "glow" {
			t.Errorf("unexpected report %+v", got)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", exampleEffects()...)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--markdown", src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "# Stub Report") || !strings.Contains(stdout, "glow") {
			t.Errorf("unexpected markdown %q", stdout)
		}
	})

	t.Run("output file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		src := writeEffects(t, dir, "effects.js", exampleEffects()...)
		out := filepath.Join(dir, "reports", "stubs.txt")

		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "-o", out, src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}

		content, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if string(content) != "Likely Stubbed Shaders:\nglow: 80 chars\n" {
			t.Errorf("unexpected report %q", content)
		}
	})

	t.Run("several files with one failing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		good := writeEffects(t, dir, "effects.js", exampleEffects()...)
		missing := filepath.Join(dir, "missing.js")

		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), good, missing)
		if err == nil || !strings.Contains(err.Error(), "1 of 2 sources") {
			t.Errorf("expected partial failure error, got %v", err)
		}
		if !strings.Contains(stdout, "==> "+good+" <==\nLikely Stubbed Shaders:\nglow: 80 chars\n") {
			t.Errorf("expected report for good file, got %q", stdout)
		}
		if !strings.Contains(stdout, "==> "+missing+" <==\nError: ") {
			t.Errorf("expected error for missing file, got %q", stdout)
		}
	})

	t.Run("directory scan", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeEffects(t, dir, "b.js", registration("beta", "x"))
		writeEffects(t, dir, "a.js", registration("alpha", "y"))
		writeEffects(t, dir, "notes.txt", registration("ignored", "z"))

		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ia := strings.Index(stdout, "alpha: 1 chars")
		ib := strings.Index(stdout, "beta: 1 chars")
		if ia < 0 || ib < 0 || ia > ib {
			t.Errorf("expected a.js before b.js, got %q", stdout)
		}
		if strings.Contains(stdout, "ignored") {
			t.Errorf("expected non-.js files to be skipped, got %q", stdout)
		}
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--dir", t.TempDir())
		if !errors.Is(err, config.ErrNoSource) {
			t.Errorf("expected ErrNoSource, got %v", err)
		}
	})

	t.Run("multi-megabyte block under default limits", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js",
			registration("huge", strings.Repeat("h", 4<<20)),
			registration("tiny", "a"),
		)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "Likely Stubbed Shaders:\ntiny: 1 chars\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("zero match timeout is accepted", func(t *testing.T) {
		t.Parallel()

		src := writeEffects(t, t.TempDir(), "effects.js", exampleEffects()...)
		stdout, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--match-timeout", "0", src)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "glow: 80 chars") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("custom pattern timeout reports the source", func(t *testing.T) {
		t.Parallel()

		content := strings.Repeat("a", 64)
		src := writeEffects(t, t.TempDir(), "effects.js", content)
		stdout, stderr, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""),
			"--pattern", `(?<id>a)(?<code>(a+)+)b`, "--match-timeout", "10ms", src)
		if !errors.Is(err, extract.ErrMatchTimeout) {
			t.Fatalf("expected ErrMatchTimeout, got %v", err)
		}
		if !strings.Contains(err.Error(), src) || strings.Contains(err.Error(), content) {
			t.Errorf("unexpected error message %q", err.Error())
		}
		if stdout != "" || strings.Contains(stderr, content) {
			t.Errorf("expected no source text in output, got stdout %q stderr %q", stdout, stderr)
		}
	})

	t.Run("invalid threshold", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--threshold", "0", "x.js")
		if !errors.Is(err, config.ErrInvalidThreshold) {
			t.Errorf("expected ErrInvalidThreshold, got %v", err)
		}
	})
}

// TestRootCmdScansDefaultSource runs stubscan without arguments.
func TestRootCmdScansDefaultSource(t *testing.T) {
	dir := t.TempDir()
	writeEffects(t, dir, config.DefaultSourcePath, exampleEffects()...)
	t.Chdir(dir)

	stdout, _, err := executeCommand(t, "-c", writeConfigFile(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "Likely Stubbed Shaders:\nglow: 80 chars\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

// TestRunScanSave tests that --save stores reports in the history database.
func TestRunScanSave(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbDir := filepath.Join(dir, "db")
	src := writeEffects(t, dir, "effects.js", exampleEffects()...)

	if _, _, err := executeCommand(t, "scan", "-c", writeConfigFile(t, ""), "--save", "--db-dir", dbDir, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stdout, _, err := executeCommand(t, "history", "--db-dir", dbDir, "--list-sources")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Sources (1):") {
		t.Errorf("expected one saved source, got %q", stdout)
	}
}
