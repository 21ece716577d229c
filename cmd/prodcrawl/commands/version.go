package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/jmylchreest/prodcrawl/cmd/prodcrawl/commands.buildVersion=1.0.0 ..."
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("prodcrawl %s (commit %s, %s, %s/%s)\n",
			buildVersion, buildCommit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
