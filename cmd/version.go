package cmd

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/achrafdevl/talentbridge/cmd.version=..." at build time.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		printVersion(cmd.OutOrStdout(), version, debug.ReadBuildInfo)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion falls back to the module version recorded by go install.
func printVersion(out io.Writer, v string, buildInfo func() (*debug.BuildInfo, bool)) {
	if v == "unknown" {
		if info, ok := buildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	fmt.Fprintf(out, "%s version: %s\n", app, v)
}
