package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/lensdata-cli/internal/analysis"
	"github.com/KaramelBytes/lensdata-cli/internal/logging"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
	"github.com/KaramelBytes/lensdata-cli/internal/merge"
)

// AnalysisDirName is the folder under output_root receiving summaries.
const AnalysisDirName = "LensDataAnalysis"

var (
	sumOutDir  string
	sumNumeric []string
	sumTopN    int
	sumQuiet   bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [dir]",
	Short: "Merge every CSV under a folder tree and summarize column distributions",
	Long: `Walk dir (default <analysis_root>, or <input_root> when unset) for .csv
files, merge them on the union of their headers and write, under
<output_root>/LensDataAnalysis:
  numeric_column_summary.csv       counts, fractions and finite-only moments
  row_counts_per_file.csv          data rows contributed by each file
  categorical_distributions/       one <column>_value_counts.csv per column
  summary.md                       a compact Markdown digest

Merged datasets and lens lists written by earlier merge and lenses runs are
recognized by their manifests and left out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		root := cfg.AnalysisRoot
		if root == "" {
			root = cfg.InputRoot
		}
		if len(args) == 1 {
			root = args[0]
		}
		outDir := sumOutDir
		if outDir == "" {
			outDir = filepath.Join(cfg.OutputRoot, AnalysisDirName)
		}
		absOut, _ := filepath.Abs(outDir)
		paths, err := walkInputs(root, isCSV)
		if err != nil {
			return err
		}
		// earlier summaries and aggregates may live inside the scanned tree
		kept := paths[:0]
		for _, p := range paths {
			if abs, _ := filepath.Abs(p); absOut != "" && strings.HasPrefix(abs, absOut+string(filepath.Separator)) {
				continue
			}
			if cmdName, ok := derivedFrom(p); ok {
				logging.L().Debug("ignoring derived file", zap.String("file", p), zap.String("command", cmdName))
				continue
			}
			kept = append(kept, p)
		}
		paths = kept

		res, err := merge.Columns(cmd.Context(), paths, merge.Options{Workers: cfg.Workers})
		if err != nil {
			return err
		}
		m := manifest.New("summarize", "", outDir)
		record(m, res.Sources, res.Skipped)
		if len(res.Sources) == 0 {
			return fmt.Errorf("no readable CSV files under %s", root)
		}

		opt := analysis.DefaultOptions()
		opt.NumericColumns = cfg.NumericColumns
		if cmd.Flags().Changed("numeric") {
			opt.NumericColumns = sumNumeric
		}
		opt.TopN = cfg.TopN
		if cmd.Flags().Changed("top") {
			opt.TopN = sumTopN
		}
		rep := analysis.Summarize(filepath.Base(filepath.Clean(root)), res.Combined, opt)
		for _, w := range rep.Warnings {
			logging.L().Warn(w)
		}
		written, err := rep.WriteAll(outDir)
		if err != nil {
			return fmt.Errorf("write summaries: %w", err)
		}
		m.AddOutput(written...)
		if err := finish(m); err != nil {
			return err
		}
		logging.L().Info("summary complete",
			zap.Int("files", len(res.Sources)),
			zap.Int("rows", rep.Rows),
			zap.Int("numeric", len(rep.Numeric)),
			zap.Int("categorical", len(rep.Categorical)))
		if !sumQuiet {
			fmt.Println(rep.Markdown())
		}
		fmt.Printf("✓ Summarized %d files (%d rows) into %s\n", len(res.Sources), rep.Rows, outDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&sumOutDir, "out-dir", "o", "", "output folder (default <output_root>/LensDataAnalysis)")
	summarizeCmd.Flags().StringSliceVar(&sumNumeric, "numeric", nil, "comma-separated numeric column names (overrides config)")
	summarizeCmd.Flags().IntVar(&sumTopN, "top", 20, "categories shown per column in the Markdown digest (overrides config)")
	summarizeCmd.Flags().BoolVar(&sumQuiet, "quiet", false, "suppress the Markdown digest on stdout")
}
