package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/lensdata-cli/internal/config"
	"github.com/KaramelBytes/lensdata-cli/internal/dataset"
	"github.com/KaramelBytes/lensdata-cli/internal/logging"
)

var (
	cfgFile string
	debug   bool
	// Overrides for config keys
	flagDataset    string
	flagInputRoot  string
	flagOutputRoot string
	flagWorkers    int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "lensdata",
	Short: "lensdata: turn lens measurement exports into merged tables and statistics",
	Long: `lensdata converts optical simulator text exports into CSV, merges per-lens CSVs
that share some but not all columns, and summarizes column distributions across
a whole lens catalogue.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) { _ = logging.Sync() },
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ~/.lensdata/config.yaml)")
	f.BoolVar(&debug, "debug", false, "enable debug output")
	f.StringVar(&flagDataset, "dataset", "", "dataset: FieldCurvature|Longitudinal|RMSvField|Vignetting or 0..3 (overrides config)")
	f.StringVar(&flagInputRoot, "input-root", "", "folder holding the dataset folders (overrides config)")
	f.StringVar(&flagOutputRoot, "output-root", "", "folder receiving outputs (overrides config)")
	f.IntVar(&flagWorkers, "workers", 0, "files read in parallel (overrides config)")
}

// setup loads configuration, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	f := cmd.Root().PersistentFlags()
	if f.Changed("dataset") {
		c.Dataset = flagDataset
	}
	if f.Changed("input-root") {
		c.InputRoot = flagInputRoot
	}
	if f.Changed("output-root") {
		c.OutputRoot = flagOutputRoot
	}
	if f.Changed("workers") && flagWorkers > 0 {
		c.Workers = flagWorkers
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.New(logging.Config{Level: level, Encoding: cfg.LogEncoding, Development: debug})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.Set(l)
	logging.L().Debug("configuration loaded",
		zap.String("dataset", cfg.Dataset),
		zap.String("input_root", cfg.InputRoot),
		zap.String("output_root", cfg.OutputRoot),
		zap.Int("workers", cfg.Workers))
	return nil
}

// resolveDataset validates the effective configuration and returns the
// dataset commands operate on.
func resolveDataset() (dataset.Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return cfg.DatasetValue()
}
