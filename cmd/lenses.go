package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/lens"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

var lensesOut string

var lensesCmd = &cobra.Command{
	Use:   "lenses",
	Short: "List the lens names found in a dataset folder",
	Long: `Derive one lens name per .csv file in <input_root>/<dataset> by dropping the
extension and the dataset token, and write them to
<output_root>/Lenses_<dataset>.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := resolveDataset()
		if err != nil {
			return err
		}
		dir := ds.Folder(cfg.InputRoot)
		names, err := lens.Names(dir, ds.String())
		if err != nil {
			return errs.NewConfig("input_root", "cannot read input directory %s: %v", dir, err)
		}
		out := lensesOut
		if out == "" {
			out = filepath.Join(cfg.OutputRoot, lens.ListName(ds.String()))
		}
		if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := lens.WriteList(out, names); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		m := manifest.New("lenses", ds.String(), out)
		m.AddInput(dir, len(names))
		m.AddOutput(out)
		if err := finish(m); err != nil {
			return err
		}
		fmt.Printf("✓ Lenses list saved to %s (%d lenses)\n", out, len(names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lensesCmd)
	lensesCmd.Flags().StringVarP(&lensesOut, "out", "o", "", "output CSV (default <output_root>/Lenses_<dataset>.csv)")
}
