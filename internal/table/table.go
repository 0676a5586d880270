// Package table holds the in-memory tabular model shared by the parsers,
// the merger and the summarizer.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// ErrNoHeader is returned by ReadCSV for input without a header row.
var ErrNoHeader = errors.New("no header row")

// Row maps a column name to its cell value.
type Row map[string]string

// Get returns the cell for name, or "" when the row has no such column.
func (r Row) Get(name string) string { return r[name] }

// Table is the content of one parsed source file: its own column list and
// positional records. A Table is not modified after construction.
type Table struct {
	Source  string
	columns []string
	records [][]string
}

// New builds a Table, copying columns and records.
func New(source string, columns []string, records [][]string) *Table {
	t := &Table{Source: source, columns: append([]string(nil), columns...)}
	t.records = make([][]string, len(records))
	for i, rec := range records {
		t.records[i] = append([]string(nil), rec...)
	}
	return t
}

// Columns returns a copy of the header as read.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Len returns the number of data records.
func (t *Table) Len() int { return len(t.records) }

// Record returns a copy of record i.
func (t *Table) Record(i int) []string { return append([]string(nil), t.records[i]...) }

// Blank reports whether every cell of record i is empty or whitespace.
func (t *Table) Blank(i int) bool {
	for _, c := range t.records[i] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Row zips the header positionally onto record i. Header tokens are trimmed
// and empty ones ignored. When a name repeats within the header the last
// occurrence wins.
func (t *Table) Row(i int) Row {
	rec := t.records[i]
	row := make(Row, len(t.columns))
	for j, h := range t.columns {
		if j >= len(rec) {
			break
		}
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		row[h] = rec[j]
	}
	return row
}

// WriteCSV writes the header followed by every record.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.records); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

// ReadCSV reads comma-delimited text with a header row. Records may be
// ragged; fully empty lines are dropped by the reader.
func ReadCSV(source string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &Table{Source: source, columns: header}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.records)+1, err)
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

// WriteFile writes t as CSV to path atomically.
func (t *Table) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
