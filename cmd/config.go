package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/lensdata-cli/internal/config"
	"github.com/KaramelBytes/lensdata-cli/internal/dataset"
	"github.com/KaramelBytes/lensdata-cli/internal/merge"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set lensdata configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input_root: %s\n", cfg.InputRoot)
		fmt.Fprintf(out, "output_root: %s\n", cfg.OutputRoot)
		fmt.Fprintf(out, "analysis_root: %s\n", cfg.AnalysisRoot)
		fmt.Fprintf(out, "dataset: %s\n", cfg.Dataset)
		fmt.Fprintf(out, "merge_mode: %s\n", cfg.MergeMode)
		fmt.Fprintf(out, "numeric_columns: %s\n", strings.Join(cfg.NumericColumns, ","))
		fmt.Fprintf(out, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(out, "header_pattern: %s\n", cfg.HeaderPattern)
		fmt.Fprintf(out, "file_marker: %s\n", cfg.Marker())
		fmt.Fprintf(out, "workers: %d\n", cfg.Workers)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_encoding: %s\n", cfg.LogEncoding)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "input_root":
			cfg.InputRoot = val
		case "output_root":
			cfg.OutputRoot = val
		case "analysis_root":
			cfg.AnalysisRoot = val
		case "dataset":
			d, err := dataset.Parse(val)
			if err != nil {
				return err
			}
			cfg.Dataset = d.String()
		case "merge_mode":
			m, err := merge.ParseMode(val)
			if err != nil {
				return err
			}
			cfg.MergeMode = string(m)
		case "numeric_columns":
			cfg.NumericColumns = cfgpkg.SplitList(val)
		case "top_n":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for top_n: %v", val)
			}
			cfg.TopN = i
		case "header_pattern":
			cfg.HeaderPattern = val
		case "file_marker":
			cfg.FileMarker = val
		case "workers":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for workers: %v", val)
			}
			cfg.Workers = i
		case "log_level":
			cfg.LogLevel = val
		case "log_encoding":
			switch val {
			case "console", "json":
				cfg.LogEncoding = val
			default:
				return fmt.Errorf("invalid log_encoding: %s (use console or json)", val)
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
