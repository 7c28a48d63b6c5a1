package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Overridden at build time via -ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildDetails is the resolved build metadata shown by the version
// command. Linker-set values win; anything missing is filled in from
// the build info embedded in the binary.
type buildDetails struct {
	version string
	commit  string
	date    string
	goVer   string
}

// resolveBuildDetails collects version, commit, build date, and the Go
// toolchain in a single pass over the embedded build info.
func resolveBuildDetails() buildDetails {
	d := buildDetails{version: version, commit: commit, date: date}

	if info, ok := debug.ReadBuildInfo(); ok {
		if d.version == "" {
			d.version = info.Main.Version
		}
		d.goVer = info.GoVersion
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if d.commit == "" {
					d.commit = shortRevision(setting.Value)
				}
			case "vcs.time":
				if d.date == "" {
					d.date = setting.Value
				}
			}
		}
	}

	if d.version == "" {
		d.version = "(devel)"
	}
	if d.commit == "" {
		d.commit = "unknown"
	}
	if d.date == "" {
		d.date = "unknown"
	}
	if d.goVer == "" {
		d.goVer = "unknown"
	}
	return d
}

// shortRevision abbreviates a VCS revision to the conventional 7-char form.
func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// getVersion returns the version string shown in the root command help.
func getVersion() string {
	return resolveBuildDetails().version
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date, and Go toolchain of wikigraph.`,
		Run: func(cmd *cobra.Command, _ []string) {
			d := resolveBuildDetails()
			fmt.Fprintf(cmd.OutOrStdout(), "wikigraph version %s\n", d.version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", d.commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", d.date)
			fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", d.goVer)
		},
	}
}
