//go:build mage

// Package main contains Mage build targets for stubscan developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "stubscan"
	cmdPkg  = "./cmd/stubscan"
)

// Default is the target run by a bare "mage".
var Default = Build

// ldflags embeds version information into the binary.
func ldflags() (string, error) {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "(devel)"
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "unknown"
	}
	date, err := sh.Output("date", "-u", "+%Y-%m-%dT%H:%M:%SZ")
	if err != nil {
		date = "unknown"
	}
	return strings.Join([]string{
		"-s -w",
		"-X main.version=" + version,
		"-X main.commit=" + commit,
		"-X main.date=" + date,
	}, " "), nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	flags, err := ldflags()
	if err != nil {
		return err
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", flags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Cover writes a coverage profile to cover.out and prints the summary.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=cover.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=cover.out")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint when it is installed.
func Lint() error {
	mg.Deps(Vet)
	if _, err := sh.Output("golangci-lint", "version"); err != nil {
		fmt.Println("golangci-lint not found; skipping")
		return nil
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Check runs vet, lint, and the tests.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build artifacts.
func Clean() error {
	if err := sh.Rm(binDir); err != nil {
		return err
	}
	return sh.Rm("cover.out")
}
