// Package merge combines per-lens CSV exports into one table.
package merge

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/parser"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
)

// Mode selects how source files are combined.
type Mode string

const (
	// ModeColumns re-projects every row onto the union of all headers.
	ModeColumns Mode = "columns"
	// ModeRows keeps the first header and appends data rows verbatim.
	ModeRows Mode = "rows"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeColumns, "":
		return ModeColumns, nil
	case ModeRows:
		return ModeRows, nil
	}
	return "", errs.NewConfig("merge_mode", "unsupported mode %q (use columns or rows)", s)
}

// Options controls merge behavior.
type Options struct {
	// Workers bounds how many files are read concurrently.
	Workers int
	// Registry reads sources; defaults to CSV only.
	Registry *parser.Registry
	// SourceColumn, when set, is the first union column and holds the base
	// name of the file each row came from. Columns mode only; it must not
	// collide with a column of any source.
	SourceColumn string
}

// Result is what a merge produced and what it had to leave out.
type Result struct {
	Combined *table.Combined // set by Columns
	Appended *table.Table    // set by Rows
	Sources  []table.SourceCount
	Skipped  []*errs.SkipError
}

// Rows returns the number of data rows in the merged output.
func (r *Result) Rows() int {
	switch {
	case r.Combined != nil:
		return r.Combined.Len()
	case r.Appended != nil:
		return r.Appended.Len()
	}
	return 0
}

func (o Options) registry() *parser.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return parser.NewRegistry(parser.CSVParser{})
}

func read(ctx context.Context, paths []string, opt Options) ([]parser.Outcome, []*errs.SkipError, error) {
	if len(paths) == 0 {
		return nil, nil, errs.NewConfig("inputs", "no input files")
	}
	outcomes, err := opt.registry().ParseFiles(ctx, paths, opt.Workers)
	if err != nil {
		return nil, nil, err
	}
	var skipped []*errs.SkipError
	for _, o := range outcomes {
		if o.Skip != nil {
			skipped = append(skipped, o.Skip)
		}
	}
	return outcomes, skipped, nil
}

// Columns merges paths, in the given order, onto the ordered union of their
// headers. Blank rows are dropped. The order of paths fixes both the column
// order of the union and the row order of the output.
func Columns(ctx context.Context, paths []string, opt Options) (*Result, error) {
	outcomes, skipped, err := read(ctx, paths, opt)
	if err != nil {
		return nil, err
	}
	union := table.NewHeaderUnion()
	if opt.SourceColumn != "" {
		union.Add(opt.SourceColumn)
	}
	var rows []table.Row
	var sources []table.SourceCount
	for _, o := range outcomes {
		if o.Table == nil {
			continue
		}
		tb := o.Table
		if opt.SourceColumn != "" {
			for _, c := range tb.Columns() {
				if strings.TrimSpace(c) == opt.SourceColumn {
					return nil, errs.NewConfig("source_column", "%q is already a column of %s", opt.SourceColumn, o.Path)
				}
			}
		}
		union.AddAll(tb.Columns())
		n := 0
		for i := 0; i < tb.Len(); i++ {
			if tb.Blank(i) {
				continue
			}
			row := tb.Row(i)
			if opt.SourceColumn != "" {
				row[opt.SourceColumn] = filepath.Base(o.Path)
			}
			rows = append(rows, row)
			n++
		}
		sources = append(sources, table.SourceCount{Source: o.Path, Rows: n})
	}
	return &Result{Combined: table.NewCombined(union, rows, sources), Sources: sources, Skipped: skipped}, nil
}

// Rows concatenates paths by text: the header of the first readable file is
// kept and every file's data rows follow unchanged.
func Rows(ctx context.Context, paths []string, opt Options) (*Result, error) {
	if opt.SourceColumn != "" {
		return nil, errs.NewConfig("source_column", "only supported in columns mode")
	}
	outcomes, skipped, err := read(ctx, paths, opt)
	if err != nil {
		return nil, err
	}
	var header []string
	var records [][]string
	var sources []table.SourceCount
	for _, o := range outcomes {
		if o.Table == nil {
			continue
		}
		if header == nil {
			header = o.Table.Columns()
		}
		for i := 0; i < o.Table.Len(); i++ {
			records = append(records, o.Table.Record(i))
		}
		sources = append(sources, table.SourceCount{Source: o.Path, Rows: o.Table.Len()})
	}
	return &Result{Appended: table.New("", header, records), Sources: sources, Skipped: skipped}, nil
}
