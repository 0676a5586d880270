package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/lensdata-cli/internal/dataset"
	"github.com/KaramelBytes/lensdata-cli/internal/errs"
)

// DirName is the per-user configuration directory under $HOME.
const DirName = ".lensdata"

// Global configuration structure.
type Global struct {
	InputRoot  string `mapstructure:"input_root" yaml:"input_root"`
	OutputRoot string `mapstructure:"output_root" yaml:"output_root"`
	Dataset    string `mapstructure:"dataset" yaml:"dataset"`
	MergeMode  string `mapstructure:"merge_mode" yaml:"merge_mode"`

	// AnalysisRoot is the tree summarize reads; input_root when empty.
	AnalysisRoot string `mapstructure:"analysis_root" yaml:"analysis_root,omitempty"`

	// Summarizer
	NumericColumns []string `mapstructure:"numeric_columns" yaml:"numeric_columns"`
	TopN           int      `mapstructure:"top_n" yaml:"top_n"`

	// Export parser
	HeaderPattern string `mapstructure:"header_pattern" yaml:"header_pattern"`
	FileMarker    string `mapstructure:"file_marker" yaml:"file_marker,omitempty"`

	Workers int `mapstructure:"workers" yaml:"workers"`

	// Logging
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	LogEncoding string `mapstructure:"log_encoding" yaml:"log_encoding"`
}

// Defaults mirrors the values Load falls back to.
var Defaults = map[string]any{
	"input_root":      ".",
	"output_root":     ".",
	"analysis_root":   "",
	"dataset":         dataset.RMSvField.String(),
	"merge_mode":      "columns",
	"numeric_columns": []string{"Surface", "Radius", "Thickness", "SemiDiameter", "Conic", "A2", "A4", "A6", "A8", "A10", "A12", "A14", "A16"},
	"top_n":           20,
	"header_pattern":  `^\s*Y\s*Field`,
	"file_marker":     "",
	"workers":         4,
	"log_level":       "info",
	"log_encoding":    "console",
}

// Dir returns ~/.lensdata.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.lensdata/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LENSDATA")
	v.AutomaticEnv()

	for k, val := range Defaults {
		v.SetDefault(k, val)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// env values for list keys arrive comma-joined and untrimmed
	c.NumericColumns = SplitList(strings.Join(c.NumericColumns, ","))
	return &c, nil
}

// SplitList splits a comma-separated value and drops empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the values that commands depend on.
func (c *Global) Validate() error {
	if _, err := dataset.Parse(c.Dataset); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(c.MergeMode)) {
	case "", "columns", "rows":
	default:
		return errs.NewConfig("merge_mode", "must be columns or rows, got %q", c.MergeMode)
	}
	if c.Workers < 1 {
		return errs.NewConfig("workers", "must be at least 1, got %d", c.Workers)
	}
	if c.TopN < 0 {
		return errs.NewConfig("top_n", "must not be negative, got %d", c.TopN)
	}
	return nil
}

// DatasetValue returns the parsed dataset selector.
func (c *Global) DatasetValue() (dataset.Dataset, error) { return dataset.Parse(c.Dataset) }

// Marker returns the export file marker, defaulting to "_<dataset>".
func (c *Global) Marker() string {
	if c.FileMarker != "" {
		return c.FileMarker
	}
	if d, err := dataset.Parse(c.Dataset); err == nil {
		return d.Marker()
	}
	return ""
}
