package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tml/internal/driver"
	"tml/internal/modfile"
)

var (
	lowerMIRPath string
	lowerOutPath string
	lowerNoCache bool
)

func init() {
	lowerCmd.Flags().StringVar(&lowerMIRPath, "mir", "", "serialized MIR module (defaults to <unit>.mir)")
	lowerCmd.Flags().StringVarP(&lowerOutPath, "output", "o", "", "output path (defaults to <emit_dir>/<unit>.ll)")
	lowerCmd.Flags().BoolVar(&lowerNoCache, "no-cache", false, "skip the lowering cache")
}

var lowerCmd = &cobra.Command{
	Use:   "lower <unit.tmlm>",
	Short: "Check a unit and lower its MIR to LLVM textual IR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		d := driver.New(cfg)
		if !lowerNoCache {
			cache, err := driver.OpenDiskCache("tml")
			if err == nil {
				d = d.WithCache(cache)
			}
		}

		unit, err := d.LoadUnit(args[0])
		if err != nil {
			return err
		}
		res := d.CheckUnit(unit)
		if res.Broken() {
			cmd.SilenceUsage = true
			return fmt.Errorf("unit %s has %d diagnostics, fix them before lowering", unit.Module.Path, res.Bag.Len())
		}

		mirPath := lowerMIRPath
		if mirPath == "" {
			mirPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".mir"
		}
		mod, err := modfile.LoadMIR(mirPath)
		if err != nil {
			return err
		}

		text, err := d.Lower(res, mod)
		printTimings(cmd, d)
		if err != nil {
			cmd.SilenceUsage = true
			return err
		}

		out := lowerOutPath
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			out = filepath.Join(cfg.Build.EmitDir, base+".ll")
		}
		if out == "-" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
			return err
		}
		cmd.Printf("lowered %s -> %s\n", unit.Module.Path, out)
		return nil
	},
}
