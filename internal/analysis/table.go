package analysis

import (
	"errors"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/table"
)

// DefaultNumericColumns are the prescription fields treated as numbers.
var DefaultNumericColumns = []string{
	"Surface", "Radius", "Thickness", "SemiDiameter", "Conic",
	"A2", "A4", "A6", "A8", "A10", "A12", "A14", "A16",
}

// MissingSentinel is the category substituted for blank cells.
const MissingSentinel = "<NaN>"

// Options controls how a combined table is summarized.
type Options struct {
	// NumericColumns are summarized numerically; every other column is
	// treated as categorical. Membership is by exact name.
	NumericColumns []string
	// TopN bounds the category prefix shown in the Markdown report.
	TopN int
	// Sentinel replaces blank categorical cells.
	Sentinel string
}

// DefaultOptions returns the lens-prescription defaults.
func DefaultOptions() Options {
	return Options{
		NumericColumns: append([]string(nil), DefaultNumericColumns...),
		TopN:           20,
		Sentinel:       MissingSentinel,
	}
}

// Report is the distribution summary of one combined table.
type Report struct {
	Name        string
	Rows        int
	Columns     int
	Numeric     []NumericSummary
	Categorical []CategoricalSummary
	Files       []FileRows
	FileStats   Description
	TopN        int
	Warnings    []string
}

// NumericSummary holds counts, fractions and finite-only moments of one column.
type NumericSummary struct {
	Column             string
	Total              int
	Finite             int
	NaN                int
	PosInf             int
	NegInf             int
	NonNumericOriginal int
	FiniteFraction     float64
	NaNFraction        float64
	PosInfFraction     float64
	NegInfFraction     float64
	Mean               float64
	Std                float64
	Min                float64
	Max                float64
}

// CategoryCount is one distinct value and how often it occurs.
type CategoryCount struct {
	Value string
	Count int
}

// CategoricalSummary is the full frequency table of one column, sorted by
// descending count and then by value.
type CategoricalSummary struct {
	Column string
	Counts []CategoryCount
}

// Top returns the first n entries of the frequency table.
func (c CategoricalSummary) Top(n int) []CategoryCount {
	if n < 0 || n >= len(c.Counts) {
		return c.Counts
	}
	return c.Counts[:n]
}

// Unique returns the number of distinct values.
func (c CategoricalSummary) Unique() int { return len(c.Counts) }

// FileRows is the number of data rows one source file contributed.
type FileRows struct {
	File string
	Rows int
}

// Summarize classifies every column of c by name and computes its
// distribution. Columns are visited in header order.
func Summarize(name string, c *table.Combined, opt Options) *Report {
	sentinel := opt.Sentinel
	if sentinel == "" {
		sentinel = MissingSentinel
	}
	numeric := make(map[string]bool, len(opt.NumericColumns))
	for _, n := range opt.NumericColumns {
		numeric[n] = true
	}
	header := c.Header()
	rep := &Report{Name: name, Rows: c.Len(), Columns: len(header), TopN: opt.TopN}
	for _, col := range header {
		cells := c.Column(col)
		if numeric[col] {
			s := SummarizeNumeric(col, cells)
			if s.Finite == 0 {
				rep.Warnings = append(rep.Warnings, "no finite values for numeric column "+col)
			}
			rep.Numeric = append(rep.Numeric, s)
			continue
		}
		rep.Categorical = append(rep.Categorical, CountValues(col, cells, sentinel))
	}

	counts := make([]float64, 0, len(c.Sources()))
	for _, s := range c.Sources() {
		rep.Files = append(rep.Files, FileRows{File: s.Source, Rows: s.Rows})
		counts = append(counts, float64(s.Rows))
	}
	rep.FileStats = Describe(counts)
	return rep
}

// ParseNumber coerces one cell. Blank and non-numeric text give NaN.
// "inf", "-Infinity" and similar spellings give infinities, and so do
// magnitudes beyond the float64 range.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// SummarizeNumeric coerces cells and summarizes them. Mean, Std, Min and
// Max cover finite values only and are NaN when there are none; Std is the
// sample deviation and needs two finite values.
func SummarizeNumeric(column string, cells []string) NumericSummary {
	s := NumericSummary{Column: column, Total: len(cells)}
	var (
		n, nonBlank int
		mean, m2    float64
	)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			nonBlank++
		}
		x := ParseNumber(cell)
		switch {
		case math.IsNaN(x):
			s.NaN++
			continue
		case math.IsInf(x, 1):
			s.PosInf++
			continue
		case math.IsInf(x, -1):
			s.NegInf++
			continue
		}
		s.Finite++
		// Welford update
		n++
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
		delta := x - mean
		mean += delta / float64(n)
		m2 += delta * (x - mean)
	}

	coerced := s.Total - s.NaN
	if d := nonBlank - coerced; d > 0 {
		s.NonNumericOriginal = d
	}

	s.FiniteFraction = fraction(s.Finite, s.Total)
	s.NaNFraction = fraction(s.NaN, s.Total)
	s.PosInfFraction = fraction(s.PosInf, s.Total)
	s.NegInfFraction = fraction(s.NegInf, s.Total)

	s.Mean, s.Std, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
	if n > 0 {
		s.Mean, s.Min, s.Max = mean, lo, hi
	}
	if n > 1 {
		s.Std = math.Sqrt(m2 / float64(n-1))
	}
	return s
}

func fraction(k, total int) float64 {
	if total == 0 {
		return math.NaN()
	}
	return float64(k) / float64(total)
}

// CountValues builds the frequency table for one categorical column. Cells
// are trimmed; blank cells count as sentinel.
func CountValues(column string, cells []string, sentinel string) CategoricalSummary {
	cats := make(map[string]int)
	for _, cell := range cells {
		v := strings.TrimSpace(cell)
		if v == "" {
			v = sentinel
		}
		cats[v]++
	}
	tops := make([]CategoryCount, 0, len(cats))
	for k, v := range cats {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	return CategoricalSummary{Column: column, Counts: tops}
}

// Description is a describe-style summary of a numeric series.
type Description struct {
	Count              int
	Mean, Std          float64
	Min, P25, P50, P75 float64
	Max                float64
}

// Describe summarizes vals. Std is the sample deviation. All statistics are
// NaN for an empty series.
func Describe(vals []float64) Description {
	d := Description{Count: len(vals)}
	nan := math.NaN()
	if len(vals) == 0 {
		d.Mean, d.Std, d.Min, d.P25, d.P50, d.P75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	var sum float64
	for _, v := range cp {
		sum += v
	}
	d.Mean = sum / float64(len(cp))
	d.Std = nan
	if len(cp) > 1 {
		var ss float64
		for _, v := range cp {
			ss += (v - d.Mean) * (v - d.Mean)
		}
		d.Std = math.Sqrt(ss / float64(len(cp)-1))
	}
	d.Min, d.Max = cp[0], cp[len(cp)-1]
	d.P25, d.P50, d.P75 = quantile(cp, 0.25), quantile(cp, 0.5), quantile(cp, 0.75)
	return d
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func baseName(p string) string { return filepath.Base(p) }
