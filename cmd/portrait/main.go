package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/timmy/portrait/internal/logger"
)

var (
	verbose bool
	appFs   = afero.NewOsFs()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "portrait",
	Short: "Generate and verify prompt portraits offline",
	Long: `portrait renders CSS portraits from text prompts without running the API
server, and verifies provenance records exported by it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.SetDefaultLogger(logger.New(&logger.Config{
			Level:       level,
			Format:      "text",
			ServiceName: "portrait-cli",
			Writer:      cmd.ErrOrStderr(),
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(moodsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
