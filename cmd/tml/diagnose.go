package main

import (
	"github.com/spf13/cobra"

	"tml/internal/source"
	"tml/internal/ui"
)

var (
	diagnoseJSON        bool
	diagnoseInteractive bool
)

func init() {
	diagnoseCmd.Flags().BoolVar(&diagnoseJSON, "json", false, "emit diagnostics as JSON")
	diagnoseCmd.Flags().BoolVarP(&diagnoseInteractive, "interactive", "i", false, "browse diagnostics in a TUI")
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <unit.tmlm>...",
	Short: "Check units and explore the resulting diagnostics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		_, bag, err := checkUnits(cmd, cfg, args)
		if err != nil {
			return err
		}
		fs := source.NewFileSet()
		if diagnoseInteractive && bag.Len() > 0 {
			return ui.Browse(bag, fs)
		}
		if err := emitDiagnostics(cmd, cfg, bag, fs, diagnoseJSON); err != nil {
			return err
		}
		cmd.Println(ui.Summary(bag))
		return nil
	},
}
