package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wifiscand",
	Short: "wifiscand scans nearby wireless networks and rates their security",
	Long: `wifiscand scans nearby wireless networks through the local adapter,
classifies each network as Open, Secured or Unknown and keeps a short
signal history per access point. Results are served over HTTP to the
bundled web frontend.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
