package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lensdata-cli/internal/logging"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
	"github.com/KaramelBytes/lensdata-cli/internal/merge"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

var (
	mergeMode      string
	mergeOut       string
	mergeSourceCol string
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Combine per-lens CSVs of one dataset into a single CSV",
	Long: `Combine per-lens CSV files. Without arguments every .csv file in
<input_root>/<dataset> is merged in file name order and the result is written
to <output_root>/<dataset>.csv.

Modes:
  columns  rows are re-projected onto the union of all headers (default)
  rows     the first header is kept and data rows are appended verbatim`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := resolveDataset()
		if err != nil {
			return err
		}
		modeName := cfg.MergeMode
		if cmd.Flags().Changed("mode") {
			modeName = mergeMode
		}
		mode, err := merge.ParseMode(modeName)
		if err != nil {
			return err
		}

		paths := args
		if len(paths) == 0 {
			paths, err = listInputs(ds.Folder(cfg.InputRoot), isCSV)
			if err != nil {
				return err
			}
		}
		out := mergeOut
		if out == "" {
			out = ds.CombinedPath(cfg.OutputRoot)
		}

		opt := merge.Options{Workers: cfg.Workers, SourceColumn: mergeSourceCol}
		var res *merge.Result
		switch mode {
		case merge.ModeRows:
			res, err = merge.Rows(cmd.Context(), paths, opt)
		default:
			res, err = merge.Columns(cmd.Context(), paths, opt)
		}
		if err != nil {
			return err
		}

		m := manifest.New("merge", ds.String(), out)
		record(m, res.Sources, res.Skipped)
		if len(res.Sources) == 0 {
			return fmt.Errorf("no readable input files among %d", len(paths))
		}
		if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		var columns int
		if res.Combined != nil {
			columns = len(res.Combined.Header())
			err = res.Combined.WriteFile(out)
		} else {
			columns = len(res.Appended.Columns())
			err = res.Appended.WriteFile(out)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		m.AddOutput(out)
		if err := finish(m); err != nil {
			return err
		}
		logging.L().Info("merge complete",
			zap.String("mode", string(mode)),
			zap.Int("files", len(res.Sources)),
			zap.Int("skipped", len(res.Skipped)),
			zap.Int("rows", res.Rows()))
		fmt.Printf("✓ Merged %d files (%d rows, %d columns) into %s\n", len(res.Sources), res.Rows(), columns, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeMode, "mode", "", "merge mode: columns|rows (overrides config)")
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "", "output CSV (default <output_root>/<dataset>.csv)")
	mergeCmd.Flags().StringVar(&mergeSourceCol, "source-column", "", "add a leading column with each row's source file name (columns mode)")
}
