package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information set at build time via ldflags:
//
//	-X main.version=v1.0.0 -X main.commit=abc1234 -X main.date=2026-01-01
var (
	version = ""
	commit  = ""
	date    = ""
)

// shortCommitLen is the length commit hashes are shortened to.
const shortCommitLen = 7

// vcsSetting returns a build setting recorded by the go command, or "".
func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// getVersion returns the version: ldflags, then module version, then "(devel)".
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the short commit hash, marked "-dirty" when the build
// had uncommitted changes.
func getCommit() string {
	if commit != "" {
		return commit
	}
	rev := vcsSetting("vcs.revision")
	if rev == "" {
		return "unknown"
	}
	if len(rev) > shortCommitLen {
		rev = rev[:shortCommitLen]
	}
	if vcsSetting("vcs.modified") == "true" {
		rev += "-dirty"
	}
	return rev
}

// getDate returns the build date.
func getDate() string {
	if date != "" {
		return date
	}
	if t := vcsSetting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date, and Go toolchain of stubscan.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stubscan version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		},
	}
}
