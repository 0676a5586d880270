package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// DefaultHeaderPattern matches the header row of a relative-illumination export.
const DefaultHeaderPattern = `^\s*Y\s*Field`

var (
	fieldSep    = regexp.MustCompile(`\t+|\s{2,}`)
	numericLead = regexp.MustCompile(`^[+-]?\d`)
)

// ExportParser reads tab or multi-space aligned text exports from the optics
// simulator. Files are selected by a .txt extension and a name marker.
type ExportParser struct {
	header *regexp.Regexp
	marker string
}

// NewExportParser compiles pattern case-insensitively. An empty marker
// accepts every .txt file.
func NewExportParser(pattern, marker string) (*ExportParser, error) {
	if pattern == "" {
		pattern = DefaultHeaderPattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("compile header pattern: %w", err)
	}
	return &ExportParser{header: re, marker: strings.ToLower(marker)}, nil
}

func (p *ExportParser) CanParse(filename string) bool {
	return utils.HasExt(filename, ".txt") && strings.Contains(strings.ToLower(filename), p.marker)
}

func (p *ExportParser) Parse(source string, text []byte) (*table.Table, error) {
	return p.ParseLines(source, utils.SplitLines(string(text)))
}

// ParseLines extracts the table that follows the first header line.
// Blank lines are ignored. Non-numeric lines are skipped until the first data
// row and end extraction afterwards. Rows are padded or truncated to the
// header width.
func (p *ExportParser) ParseLines(source string, lines []string) (*table.Table, error) {
	headerIdx := -1
	for i, line := range lines {
		if p.header.MatchString(line) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, errs.NewSkip(source, "no header line found", nil)
	}
	headers := Fields(lines[headerIdx])
	width := len(headers)

	var data [][]string
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := Fields(line)
		if len(parts) == 0 || !numericLead.MatchString(parts[0]) {
			if len(data) > 0 {
				break
			}
			continue
		}
		row := make([]string, width)
		copy(row, parts)
		data = append(data, row)
	}
	if len(data) == 0 {
		return nil, errs.NewSkip(source, "no data rows found", nil)
	}
	return table.New(source, headers, data), nil
}

// Fields splits a line on runs of tabs or two-or-more spaces and drops empty
// tokens.
func Fields(line string) []string {
	raw := fieldSep.Split(strings.TrimSpace(line), -1)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// OutputName returns the CSV name written for an export file: the base name
// without extension plus "_RI.csv".
func OutputName(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if dot := strings.LastIndex(base, "."); dot > 0 {
		base = base[:dot]
	}
	return base + "_RI.csv"
}
