package cmd

import (
	"fmt"

	"github.com/rohmanhakim/docs-harvester/internal/build"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the harvester version.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "docs-harvester %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}
