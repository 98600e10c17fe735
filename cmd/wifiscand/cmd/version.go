package cmd

import (
	"fmt"

	"github.com/dogeorg/wifiscand/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Get wifiscand version information",
	Run: func(cmd *cobra.Command, args []string) {
		version := version.GetRelease()

		fmt.Fprintf(cmd.OutOrStdout(), "Release: %s\n", version.Release)
		fmt.Fprintf(cmd.OutOrStdout(), "Git: %s\n", version.Git.Commit)
		fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", version.Git.Dirty)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
