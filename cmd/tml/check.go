package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tml/internal/source"
	"tml/internal/ui"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit diagnostics as JSON")
}

var checkCmd = &cobra.Command{
	Use:   "check <unit.tmlm>...",
	Short: "Type-check compilation units",
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
		if err := emitDiagnostics(cmd, cfg, bag, fs, checkJSON); err != nil {
			return err
		}
		cmd.Println(ui.Summary(bag))
		if bag.HasErrors() {
			cmd.SilenceUsage = true
			return errors.New("check failed")
		}
		return nil
	},
}
