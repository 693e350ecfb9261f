package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tml/internal/diag"
	"tml/internal/diagfmt"
	"tml/internal/driver"
	"tml/internal/project"
	"tml/internal/source"
)

// loadConfig reads the project configuration named by --config, falling
// back to defaults when the file does not exist.
func loadConfig(cmd *cobra.Command) (project.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return project.Default("tml"), nil
	}
	return project.Load(path)
}

// colorEnabled resolves the --color flag against the configuration and
// the terminal.
func colorEnabled(cmd *cobra.Command, cfg project.Config) bool {
	mode, _ := cmd.Flags().GetString("color")
	if mode == "auto" && cfg.Diag.Color != project.ColorAuto {
		mode = string(cfg.Diag.Color)
	}
	switch project.ColorMode(mode) {
	case project.ColorAlways:
		return true
	case project.ColorNever:
		return false
	default:
		return diagfmt.AutoColor(os.Stdout)
	}
}

// checkUnits loads and checks every named unit file, returning results
// in a deterministic order alongside a merged bag.
func checkUnits(cmd *cobra.Command, cfg project.Config, paths []string) ([]*driver.UnitResult, *diag.Bag, error) {
	d := driver.New(cfg)
	units := make([]*driver.Unit, 0, len(paths))
	for _, path := range paths {
		unit, err := d.LoadUnit(path)
		if err != nil {
			return nil, nil, err
		}
		units = append(units, unit)
	}
	byPath, err := d.CheckAll(cmd.Context(), units)
	if err != nil {
		return nil, nil, err
	}

	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	if maxDiags <= 0 {
		maxDiags = 100
	}
	merged := diag.NewBag(maxDiags)
	results := make([]*driver.UnitResult, 0, len(units))
	for _, unit := range units {
		res := byPath[unit.Module.Path]
		if res == nil {
			return nil, nil, fmt.Errorf("no result for unit %s", unit.Module.Path)
		}
		results = append(results, res)
		merged.Merge(res.Bag)
	}
	merged.Sort()
	printTimings(cmd, d)
	return results, merged, nil
}

// printTimings writes the driver's phase report to stderr when the
// --timings flag is set.
func printTimings(cmd *cobra.Command, d *driver.Driver) {
	if on, _ := cmd.Flags().GetBool("timings"); on {
		fmt.Fprint(cmd.ErrOrStderr(), d.Timings().Summary())
	}
}

// emitDiagnostics prints the merged bag in the configured format.
func emitDiagnostics(cmd *cobra.Command, cfg project.Config, bag *diag.Bag, fs *source.FileSet, asJSON bool) error {
	if asJSON || cfg.Diag.JSON {
		return diagfmt.WriteJSON(cmd.OutOrStdout(), bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     true,
		})
	}
	diagfmt.Pretty(cmd.OutOrStdout(), bag, fs, diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, cfg),
		ShowNotes: true,
	})
	return nil
}
