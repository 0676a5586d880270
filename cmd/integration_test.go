package cmd

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/manifest"
)

// resetFlags restores every flag to its default so invocations do not leak
// Changed state into each other.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd executes the root command with args and returns its error.
func execCmd(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	if err := execCmd(t, args...); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func isolate(t *testing.T) (in, out string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	in = filepath.Join(home, "exports")
	out = filepath.Join(home, "csv")
	require.NoError(t, os.MkdirAll(in, 0o755))
	return in, out
}

func writeFile(t *testing.T, path string, body []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, body, 0o644))
}

func utf16le(s string) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE})
	for _, u := range utf16.Encode([]rune(s)) {
		_ = binary.Write(&buf, binary.LittleEndian, u)
	}
	return buf.Bytes()
}

func TestCLI_MergeColumnsWritesCombinedAndManifest(t *testing.T) {
	in, out := isolate(t)
	dir := filepath.Join(in, "RMSvField")
	writeFile(t, filepath.Join(dir, "Lens_A_RMSvField.csv"), []byte("A,B\n1,2\n"))
	writeFile(t, filepath.Join(dir, "Lens_B_RMSvField.csv"), []byte("B,C\n3,4\n ,\n"))
	writeFile(t, filepath.Join(dir, "Lens_C_RMSvField.csv"), nil)

	runCmd(t, "merge", "--dataset", "2", "--input-root", in, "--output-root", out)

	combined := filepath.Join(out, "RMSvField.csv")
	b, err := os.ReadFile(combined)
	require.NoError(t, err)
	assert.Equal(t, "A,B,C\n1,2,\n,3,4\n", string(b))

	m, err := manifest.Load(manifest.PathFor(combined))
	require.NoError(t, err)
	assert.Equal(t, "merge", m.Command)
	assert.Equal(t, "RMSvField", m.Dataset)
	assert.Len(t, m.Inputs, 2)
	require.Len(t, m.Skipped, 1)
	assert.Equal(t, "empty file", m.Skipped[0].Reason)
}

func TestCLI_MergeRowsMode(t *testing.T) {
	in, out := isolate(t)
	dir := filepath.Join(in, "Vignetting")
	writeFile(t, filepath.Join(dir, "a.csv"), []byte("X,Y\n1,2\n"))
	writeFile(t, filepath.Join(dir, "b.csv"), []byte("X,Y\n3,4\n"))
	dst := filepath.Join(out, "all.csv")

	runCmd(t, "merge", "--dataset", "vignetting", "--input-root", in, "--mode", "rows", "-o", dst)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "X,Y\n1,2\n3,4\n", string(b))
}

func TestCLI_MergeRejectsBadDataset(t *testing.T) {
	in, out := isolate(t)
	err := execCmd(t, "merge", "--dataset", "Distortion", "--input-root", in, "--output-root", out)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestCLI_MergeMissingFolderIsConfigError(t *testing.T) {
	in, out := isolate(t)
	err := execCmd(t, "merge", "--dataset", "Longitudinal", "--input-root", in, "--output-root", out)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
	assert.NoFileExists(t, filepath.Join(out, "Longitudinal.csv"))
}

func TestCLI_ExtractHandlesUTF16AndSkips(t *testing.T) {
	in, out := isolate(t)
	export := "Relative Illumination\r\n\r\nY Field\tRel. Illum\r\n0.000\t1.000\r\n5.000\t0.950\r\n\r\nSummary\r\n"
	writeFile(t, filepath.Join(in, "lensA", "LensA_Vignetting.txt"), utf16le(export))
	writeFile(t, filepath.Join(in, "LensB_Vignetting.TXT"), []byte("no table here\n"))
	writeFile(t, filepath.Join(in, "LensB_RMSvField.txt"), []byte("Y Field  X\n1  2\n"))

	runCmd(t, "extract", "--dataset", "Vignetting", "--input-root", in, "--output-root", out)

	dst := filepath.Join(out, "Vignetting", "LensA_Vignetting_RI.csv")
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Y Field,Rel. Illum\n0.000,1.000\n5.000,0.950\n", string(b))
	assert.NoFileExists(t, filepath.Join(out, "Vignetting", "LensB_RMSvField_RI.csv"))

	m, err := manifest.Load(manifest.PathFor(filepath.Join(out, "Vignetting")))
	require.NoError(t, err)
	require.Len(t, m.Skipped, 1)
	assert.Equal(t, "no header line found", m.Skipped[0].Reason)
	assert.Equal(t, []string{dst}, m.Outputs)
}

func TestCLI_LensesList(t *testing.T) {
	in, out := isolate(t)
	dir := filepath.Join(in, "Vignetting")
	writeFile(t, filepath.Join(dir, "Lens_B_Vignetting.csv"), []byte("x\n"))
	writeFile(t, filepath.Join(dir, "Lens_A_Vignetting.csv"), []byte("x\n"))

	runCmd(t, "lenses", "--dataset", "3", "--input-root", in, "--output-root", out)

	b, err := os.ReadFile(filepath.Join(out, "Lenses_Vignetting.csv"))
	require.NoError(t, err)
	assert.Equal(t, "LensName\nLens_A\nLens_B\n", string(b))
}

func TestCLI_SummarizeWritesTables(t *testing.T) {
	in, out := isolate(t)
	writeFile(t, filepath.Join(in, "a", "lens1.csv"), []byte("Surface,Radius,Material\n1,10,N-BK7\n2,abc,\n"))
	writeFile(t, filepath.Join(in, "b", "lens2.csv"), []byte("Surface,Radius,Material\n1,inf,F2\n"))

	runCmd(t, "summarize", "--input-root", in, "--output-root", out, "--quiet")

	dir := filepath.Join(out, AnalysisDirName)
	num, err := os.ReadFile(filepath.Join(dir, "numeric_column_summary.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(num)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "Radius,3,1,1,1,0,1,"))

	cat, err := os.ReadFile(filepath.Join(dir, "categorical_distributions", "Material_value_counts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Material,count\n<NaN>,1\nF2,1\nN-BK7,1\n", string(cat))

	rows, err := os.ReadFile(filepath.Join(dir, "row_counts_per_file.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(rows), "lens1.csv,2")
	assert.FileExists(t, filepath.Join(dir, "summary.md"))
}

func TestCLI_SummarizeIgnoresItsOwnOutputs(t *testing.T) {
	in, _ := isolate(t)
	writeFile(t, filepath.Join(in, "lens1.csv"), []byte("Surface,Radius\n1,10\n2,20\n"))

	runCmd(t, "summarize", "--input-root", in, "--output-root", in, "--quiet")
	first, err := os.ReadFile(filepath.Join(in, AnalysisDirName, "numeric_column_summary.csv"))
	require.NoError(t, err)

	runCmd(t, "summarize", "--input-root", in, "--output-root", in, "--quiet")
	second, err := os.ReadFile(filepath.Join(in, AnalysisDirName, "numeric_column_summary.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestCLI_SummarizeLeavesOutMergedAndLensLists(t *testing.T) {
	root, _ := isolate(t)
	src := filepath.Join(root, "RMSvField", "lensA_RMSvField.csv")
	writeFile(t, src, []byte("Surface,Radius\n1,10\n2,20\n"))

	runCmd(t, "merge", "--dataset", "RMSvField", "--input-root", root, "--output-root", root)
	runCmd(t, "lenses", "--dataset", "RMSvField", "--input-root", root, "--output-root", root)
	require.FileExists(t, filepath.Join(root, "RMSvField.csv"))
	require.FileExists(t, filepath.Join(root, "Lenses_RMSvField.csv"))

	runCmd(t, "summarize", "--input-root", root, "--output-root", root, "--quiet")

	dir := filepath.Join(root, AnalysisDirName)
	rows, err := os.ReadFile(filepath.Join(dir, "row_counts_per_file.csv"))
	require.NoError(t, err)
	assert.Equal(t, "file,n_rows\n"+src+",2\n", string(rows))

	num, err := os.ReadFile(filepath.Join(dir, "numeric_column_summary.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(num)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Surface,2,"), lines[1])
}

func TestCLI_SummarizeAnalysisRoot(t *testing.T) {
	in, out := isolate(t)
	writeFile(t, filepath.Join(in, "ignored.csv"), []byte("A\n1\n"))
	other := filepath.Join(t.TempDir(), "analysis")
	writeFile(t, filepath.Join(other, "lens1.csv"), []byte("B\n1\n2\n"))
	t.Setenv("LENSDATA_ANALYSIS_ROOT", other)

	runCmd(t, "summarize", "--input-root", in, "--output-root", out, "--quiet")

	rows, err := os.ReadFile(filepath.Join(out, AnalysisDirName, "row_counts_per_file.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(rows), "lens1.csv,2")
	assert.NotContains(t, string(rows), "ignored.csv")
}

func TestCLI_MergeRowsRejectsSourceColumn(t *testing.T) {
	in, out := isolate(t)
	writeFile(t, filepath.Join(in, "Vignetting", "a.csv"), []byte("X\n1\n"))
	err := execCmd(t, "merge", "--dataset", "vignetting", "--input-root", in, "--output-root", out, "--mode", "rows", "--source-column", "SourceFile")
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestCLI_SurfacesFromSnapshot(t *testing.T) {
	_, out := isolate(t)
	snap := filepath.Join(t.TempDir(), "double_gauss.json")
	writeFile(t, snap, []byte(`{"surfaces":[{"Comment":"OBJ","Type":"Standard","Radius":"Infinity","Thickness":0,"Material":"","SemiDiameter":0,"Conic":0}]}`))

	runCmd(t, "surfaces", snap, "--output-root", out)

	b, err := os.ReadFile(filepath.Join(out, "double_gauss.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Surface,Comment,Type,Radius,Thickness,Material,SemiDiameter,Conic,A4,A6,A8\n1,OBJ,Standard,+Inf,0,,0,0,,,\n", string(b))
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)
	runCmd(t, "config", "set", "dataset", "longitudinal")
	runCmd(t, "config", "set", "workers", "2")
	require.Error(t, execCmd(t, "config", "set", "merge_mode", "diagonal"))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	runCmd(t, "config", "show")
	assert.Contains(t, buf.String(), "dataset: Longitudinal\n")
	assert.Contains(t, buf.String(), "workers: 2\n")
	assert.Contains(t, buf.String(), "file_marker: _Longitudinal\n")
}
