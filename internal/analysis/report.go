package analysis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// Output file names inside the analysis directory.
const (
	NumericSummaryFile = "numeric_column_summary.csv"
	RowCountsFile      = "row_counts_per_file.csv"
	CategoricalDir     = "categorical_distributions"
	MarkdownFile       = "summary.md"
)

var numericHeader = []string{
	"column", "total_entries", "finite_count", "nan_count", "posinf_count", "neginf_count",
	"non_numeric_original_count", "finite_fraction", "nan_fraction", "posinf_fraction",
	"neginf_fraction", "mean_over_finite", "std_over_finite", "min_over_finite", "max_over_finite",
}

// formatFloat renders NaN as an empty cell.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// WriteNumericCSV writes one row per numeric column.
func (r *Report) WriteNumericCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(numericHeader); err != nil {
		return err
	}
	for _, s := range r.Numeric {
		rec := []string{
			s.Column,
			strconv.Itoa(s.Total), strconv.Itoa(s.Finite), strconv.Itoa(s.NaN),
			strconv.Itoa(s.PosInf), strconv.Itoa(s.NegInf), strconv.Itoa(s.NonNumericOriginal),
			formatFloat(s.FiniteFraction), formatFloat(s.NaNFraction),
			formatFloat(s.PosInfFraction), formatFloat(s.NegInfFraction),
			formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Min), formatFloat(s.Max),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV writes the full frequency table: value, count.
func (c CategoricalSummary) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{c.Column, "count"}); err != nil {
		return err
	}
	for _, kv := range c.Counts {
		if err := cw.Write([]string{kv.Value, strconv.Itoa(kv.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRowCountsCSV writes file, n_rows for every merged source.
func (r *Report) WriteRowCountsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"file", "n_rows"}); err != nil {
		return err
	}
	for _, f := range r.Files {
		if err := cw.Write([]string{f.File, strconv.Itoa(f.Rows)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll writes every summary table and the Markdown digest under dir and
// returns the written paths.
func (r *Report) WriteAll(dir string) ([]string, error) {
	catDir := filepath.Join(dir, CategoricalDir)
	if err := utils.EnsureDir(catDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var written []string
	write := func(path string, fill func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := fill(&buf); err != nil {
			return fmt.Errorf("render %s: %w", filepath.Base(path), err)
		}
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}
	if err := write(filepath.Join(dir, NumericSummaryFile), r.WriteNumericCSV); err != nil {
		return written, err
	}
	if err := write(filepath.Join(dir, RowCountsFile), r.WriteRowCountsCSV); err != nil {
		return written, err
	}
	for _, c := range r.Categorical {
		name := utils.SafeFileName(c.Column) + "_value_counts.csv"
		if err := write(filepath.Join(catDir, name), c.WriteCSV); err != nil {
			return written, err
		}
	}
	md := func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown())
		return err
	}
	if err := write(filepath.Join(dir, MarkdownFile), md); err != nil {
		return written, err
	}
	return written, nil
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Files: %d\n", len(r.Files)))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, categorical %d)\n", r.Columns, len(r.Numeric), len(r.Categorical)))

	if len(r.Files) > 0 {
		d := r.FileStats
		b.WriteString("\n[ROWS PER FILE]\n")
		b.WriteString(fmt.Sprintf("- count %d, mean %.4g, std %.4g, min %.4g, 25%% %.4g, 50%% %.4g, 75%% %.4g, max %.4g\n",
			d.Count, d.Mean, d.Std, d.Min, d.P25, d.P50, d.P75, d.Max))
	}

	if len(r.Numeric) > 0 {
		b.WriteString("\n[NUMERIC COLUMNS]\n")
		for _, s := range r.Numeric {
			b.WriteString(fmt.Sprintf("- %s: N=%d, NaN=%d, +Inf=%d, -Inf=%d", s.Column, s.Finite, s.NaN, s.PosInf, s.NegInf))
			if s.Finite > 0 {
				b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g", s.Min, s.Max, s.Mean))
				if !math.IsNaN(s.Std) {
					b.WriteString(fmt.Sprintf(", std %.4g", s.Std))
				}
			}
			if s.NonNumericOriginal > 0 {
				b.WriteString(fmt.Sprintf("; non-numeric %d", s.NonNumericOriginal))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Categorical) > 0 {
		b.WriteString("\n[CATEGORICAL COLUMNS]\n")
		for _, c := range r.Categorical {
			b.WriteString(fmt.Sprintf("- %s: ", safeName(c.Column)))
			for i, kv := range c.Top(r.TopN) {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if shown := len(c.Top(r.TopN)); c.Unique() > shown {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique()))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Files) > 0 {
		b.WriteString("\n[FILES]\n")
		for _, f := range r.Files {
			b.WriteString(fmt.Sprintf("- %s: %d rows\n", baseName(f.File), f.Rows))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
