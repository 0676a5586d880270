package analysis

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lensdata-cli/internal/table"
)

func combined(header []string, rows [][]string, sources ...table.SourceCount) *table.Combined {
	h := table.NewHeaderUnion(header...)
	out := make([]table.Row, 0, len(rows))
	for _, rec := range rows {
		r := table.Row{}
		for i, v := range rec {
			r[header[i]] = v
		}
		out = append(out, r)
	}
	return table.NewCombined(h, out, sources)
}

func TestSummarizeNumericMixedCells(t *testing.T) {
	s := SummarizeNumeric("Radius", []string{"1", "abc", "3"})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Finite)
	assert.Equal(t, 1, s.NaN)
	assert.Equal(t, 1, s.NonNumericOriginal)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.InDelta(t, 2.0/3.0, s.FiniteFraction, 1e-12)
}

func TestSummarizeNumericInfinities(t *testing.T) {
	s := SummarizeNumeric("Conic", []string{"inf", "-Infinity", "+inf", "nan", "", " 2.5 "})
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.PosInf)
	assert.Equal(t, 1, s.NegInf)
	assert.Equal(t, 2, s.NaN)
	assert.Equal(t, 1, s.Finite)
	// "nan" is non-blank but coerces to NaN.
	assert.Equal(t, 1, s.NonNumericOriginal)
	assert.Equal(t, 2.5, s.Mean)
	assert.True(t, math.IsNaN(s.Std), "one finite value has no sample std")
	assert.Equal(t, s.Total, s.Finite+s.NaN+s.PosInf+s.NegInf)
}

func TestSummarizeNumericOverflowIsInfinite(t *testing.T) {
	s := SummarizeNumeric("A16", []string{"1e400", "-1e400", "0x10", "1"})
	assert.Equal(t, 1, s.Finite)
	assert.Equal(t, 1, s.PosInf)
	assert.Equal(t, 1, s.NegInf)
	assert.Equal(t, 1, s.NaN)
	assert.Equal(t, 1, s.NonNumericOriginal)
	assert.Equal(t, 1.0, s.Mean)
}

func TestSummarizeNumericNoFinite(t *testing.T) {
	s := SummarizeNumeric("A4", []string{"", "x"})
	assert.Equal(t, 0, s.Finite)
	for _, f := range []float64{s.Mean, s.Std, s.Min, s.Max} {
		assert.True(t, math.IsNaN(f))
	}

	empty := SummarizeNumeric("A6", nil)
	assert.True(t, math.IsNaN(empty.FiniteFraction))
}

func TestCountValuesOrderAndSentinel(t *testing.T) {
	c := CountValues("Material", []string{"N-BK7", " ", "F2", "N-BK7", "", "AIR", "F2", "N-BK7"}, MissingSentinel)
	want := []CategoryCount{
		{Value: "N-BK7", Count: 3},
		{Value: "<NaN>", Count: 2},
		{Value: "F2", Count: 2},
		{Value: "AIR", Count: 1},
	}
	if diff := cmp.Diff(want, c.Counts); diff != "" {
		t.Fatalf("counts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want[:2], c.Top(2))
	assert.Equal(t, want, c.Top(10))
	assert.Equal(t, 4, c.Unique())
}

func TestSummarizeClassifiesByName(t *testing.T) {
	c := combined(
		[]string{"Surface", "Material", "Radius", "Comment"},
		[][]string{
			{"1", "N-BK7", "10.5", "front"},
			{"2", "", "inf", ""},
			{"3", "N-BK7", "-8", "back"},
		},
		table.SourceCount{Source: "/data/Lens_A.csv", Rows: 2},
		table.SourceCount{Source: "/data/Lens_B.csv", Rows: 1},
	)
	rep := Summarize("RMSvField", c, DefaultOptions())
	require.Len(t, rep.Numeric, 2)
	require.Len(t, rep.Categorical, 2)
	assert.Equal(t, "Surface", rep.Numeric[0].Column)
	assert.Equal(t, "Radius", rep.Numeric[1].Column)
	assert.Equal(t, 1, rep.Numeric[1].PosInf)
	assert.Equal(t, "Material", rep.Categorical[0].Column)
	assert.Equal(t, CategoryCount{Value: "N-BK7", Count: 2}, rep.Categorical[0].Counts[0])

	assert.Equal(t, 2, rep.FileStats.Count)
	assert.Equal(t, 1.5, rep.FileStats.Mean)
	assert.Equal(t, 1.0, rep.FileStats.Min)
	assert.Equal(t, 2.0, rep.FileStats.Max)
	assert.Empty(t, rep.Warnings)
}

func TestSummarizeWarnsOnEmptyNumericColumn(t *testing.T) {
	c := combined([]string{"Conic"}, [][]string{{""}, {"n/a"}})
	rep := Summarize("x", c, DefaultOptions())
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "Conic")
}

func TestDescribeQuartiles(t *testing.T) {
	d := Describe([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, d.Count)
	assert.Equal(t, 2.5, d.Mean)
	assert.Equal(t, 1.75, d.P25)
	assert.Equal(t, 2.5, d.P50)
	assert.Equal(t, 3.25, d.P75)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 4.0, d.Max)

	assert.True(t, math.IsNaN(Describe(nil).Mean))
}

func TestWriteNumericCSV(t *testing.T) {
	rep := &Report{Numeric: []NumericSummary{SummarizeNumeric("Radius", []string{"1", "abc", "3"})}}
	var buf bytes.Buffer
	require.NoError(t, rep.WriteNumericCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "column,total_entries,finite_count,nan_count"))
	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, len(numericHeader))
	assert.Equal(t, []string{"Radius", "3", "2", "1", "0", "0", "1"}, fields[:7])
	assert.Equal(t, "2", fields[11])
}

func TestWriteNumericCSVLeavesNaNBlank(t *testing.T) {
	rep := &Report{Numeric: []NumericSummary{SummarizeNumeric("A8", []string{""})}}
	var buf bytes.Buffer
	require.NoError(t, rep.WriteNumericCSV(&buf))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), "A8,1,0,1,0,0,0,0,1,0,0,,,,"))
}

func TestWriteAll(t *testing.T) {
	c := combined(
		[]string{"Surface", "Material"},
		[][]string{{"1", "N-BK7"}, {"2", ""}},
		table.SourceCount{Source: "a.csv", Rows: 2},
	)
	rep := Summarize("FieldCurvature", c, DefaultOptions())
	dir := t.TempDir()
	written, err := rep.WriteAll(dir)
	require.NoError(t, err)
	assert.Len(t, written, 4)

	cat, err := os.ReadFile(filepath.Join(dir, CategoricalDir, "Material_value_counts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Material,count\n<NaN>,1\nN-BK7,1\n", string(cat))

	rows, err := os.ReadFile(filepath.Join(dir, RowCountsFile))
	require.NoError(t, err)
	assert.Equal(t, "file,n_rows\na.csv,2\n", string(rows))

	md, err := os.ReadFile(filepath.Join(dir, MarkdownFile))
	require.NoError(t, err)
	assert.Contains(t, string(md), "[DATASET SUMMARY]")
	assert.Contains(t, string(md), "Material: <NaN>(1), N-BK7(1)")
}

func TestMarkdownTopN(t *testing.T) {
	c := combined([]string{"Type"}, [][]string{{"STANDARD"}, {"STANDARD"}, {"EVENASPH"}, {"TOROIDAL"}})
	opt := DefaultOptions()
	opt.TopN = 1
	md := Summarize("x", c, opt).Markdown()
	assert.Contains(t, md, "- Type: STANDARD(2); unique=3")
	assert.NotContains(t, md, "EVENASPH")
}
