package main

import (
	"os"

	"github.com/spf13/cobra"

	"tml/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tml",
	Short: "TML semantic core and lowering toolchain",
	Long:  `tml checks TML compilation units and lowers them to LLVM textual IR`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "tml.toml", "project configuration file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|always|never)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().Bool("timings", false, "print per-phase timings to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
