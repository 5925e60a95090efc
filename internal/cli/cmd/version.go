package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/permstore/internal/domain/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		version := buildInfo.Version
		if version == "" {
			version = "dev"
		}
		fmt.Fprintf(out, "permstore %s\n", version)
		if buildInfo.Commit != "" {
			fmt.Fprintf(out, "commit:  %s\n", buildInfo.Commit)
		}
		if buildInfo.BuildDate != "" {
			fmt.Fprintf(out, "built:   %s\n", buildInfo.BuildDate)
		}
		if buildInfo.GoVersion != "" {
			fmt.Fprintf(out, "go:      %s\n", buildInfo.GoVersion)
		}
		fmt.Fprintf(out, "source:  %s\n", build.RepoURL())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
