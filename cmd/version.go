package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information (injected at build time via -ldflags)
// These default values indicate a development build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")

		if verbose {
			fmt.Printf(`vigia Version Information:
  Version:    %s
  Git Commit: %s
  Build Date: %s
  Go Version: %s
  OS/Arch:    %s/%s
`, Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		} else {
			fmt.Printf("vigia version %s\n", Version)
		}
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	Run: func(cmd *cobra.Command, args []string) {
		// TODO: query the GitHub releases API once the release pipeline
		// publishes signed binaries.
		fmt.Printf("Self-update is not available yet. Current version: %s\n", Version)
		fmt.Println("Download releases from https://github.com/vigia-scan/vigia/releases")
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
}
