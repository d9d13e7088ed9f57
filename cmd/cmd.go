package cmd

import (
	"os"

	"github.com/sim0n-says/AnalyseFauneQuebec/cmd/extract"
	"github.com/sim0n-says/AnalyseFauneQuebec/cmd/synthesize"
	"github.com/sim0n-says/AnalyseFauneQuebec/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

// Execute runs the command line. Without a sub-command it extracts.
func Execute() {
	var rootCmd = &cobra.Command{
		Use:          "faunequebec",
		Short:        "crawl and summarize the Québec wildlife fact sheets.",
		Args:         cobra.NoArgs,
		RunE:         extract.Cmd.RunE,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(extract.Cmd, synthesize.Cmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
