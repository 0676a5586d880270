package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// SourceCount records how many rows one source file contributed.
type SourceCount struct {
	Source string
	Rows   int
}

// Combined is the output of a column-union merge: the header union plus every
// contributing row. Consumers only read it.
type Combined struct {
	header  *HeaderUnion
	rows    []Row
	sources []SourceCount
}

// NewCombined wraps the merge result. The caller hands over ownership of
// header and rows.
func NewCombined(header *HeaderUnion, rows []Row, sources []SourceCount) *Combined {
	if header == nil {
		header = NewHeaderUnion()
	}
	return &Combined{header: header, rows: rows, sources: append([]SourceCount(nil), sources...)}
}

// Header returns the union column names in first-seen order.
func (c *Combined) Header() []string { return c.header.Names() }

// HasColumn reports whether name is part of the union.
func (c *Combined) HasColumn(name string) bool { return c.header.Contains(name) }

// Len returns the number of rows.
func (c *Combined) Len() int { return len(c.rows) }

// Row returns row i. The map must not be modified.
func (c *Combined) Row(i int) Row { return c.rows[i] }

// Sources returns per-file row contributions in merge order.
func (c *Combined) Sources() []SourceCount { return append([]SourceCount(nil), c.sources...) }

// Record projects row i onto the header union; absent columns read as "".
func (c *Combined) Record(i int) []string {
	names := c.header.names
	out := make([]string, len(names))
	row := c.rows[i]
	for j, name := range names {
		out[j] = row[name]
	}
	return out
}

// Column returns every row's value for name, "" where absent.
func (c *Combined) Column(name string) []string {
	out := make([]string, len(c.rows))
	for i, row := range c.rows {
		out[i] = row[name]
	}
	return out
}

// WriteCSV writes the union header followed by every projected row.
func (c *Combined) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(c.header.names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range c.rows {
		if err := cw.Write(c.Record(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes c as CSV to path atomically.
func (c *Combined) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := c.WriteCSV(&buf); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, buf.Bytes())
}
