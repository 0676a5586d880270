package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/logging"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
	"github.com/KaramelBytes/lensdata-cli/internal/parser"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

var extractOutDir string

var extractCmd = &cobra.Command{
	Use:   "extract [dir]",
	Short: "Convert simulator text exports into per-file CSVs",
	Long: `Walk dir (default <input_root>) for .txt exports whose name contains the
dataset marker (default "_<dataset>"), extract the table that follows the
header line and write <name>_RI.csv under <output_root>/<dataset>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := resolveDataset()
		if err != nil {
			return err
		}
		root := cfg.InputRoot
		if len(args) == 1 {
			root = args[0]
		}
		outDir := extractOutDir
		if outDir == "" {
			outDir = ds.Folder(cfg.OutputRoot)
		}

		ep, err := parser.NewExportParser(cfg.HeaderPattern, cfg.Marker())
		if err != nil {
			return fmt.Errorf("header_pattern: %w", err)
		}
		reg := parser.NewRegistry(ep)
		paths, err := walkInputs(root, reg.Accepts)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Printf("No export files matching %q under %s\n", cfg.Marker(), root)
			return nil
		}
		outcomes, err := reg.ParseFiles(cmd.Context(), paths, cfg.Workers)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		m := manifest.New("extract", ds.String(), outDir)
		var sources []table.SourceCount
		for _, o := range outcomes {
			if o.Table == nil {
				record(m, nil, []*errs.SkipError{o.Skip})
				continue
			}
			out := filepath.Join(outDir, parser.OutputName(o.Path))
			if err := o.Table.WriteFile(out); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			m.AddOutput(out)
			sources = append(sources, table.SourceCount{Source: o.Path, Rows: o.Table.Len()})
			logging.L().Debug("export written", zap.String("file", out), zap.Int("rows", o.Table.Len()))
		}
		record(m, sources, nil)
		if err := finish(m); err != nil {
			return err
		}
		fmt.Printf("✓ Extracted %d of %d export files into %s\n", len(sources), len(paths), outDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutDir, "out-dir", "o", "", "output folder (default <output_root>/<dataset>)")
}
