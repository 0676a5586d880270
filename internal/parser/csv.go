package parser

import (
	"bytes"
	"errors"

	"github.com/KaramelBytes/lensdata-cli/internal/errs"
	"github.com/KaramelBytes/lensdata-cli/internal/table"
	"github.com/KaramelBytes/lensdata-cli/internal/utils"
)

// CSVParser reads comma-delimited files with a header row.
type CSVParser struct{}

func (CSVParser) CanParse(filename string) bool {
	return utils.HasExt(filename, ".csv")
}

func (CSVParser) Parse(source string, text []byte) (*table.Table, error) {
	tb, err := table.ReadCSV(source, bytes.NewReader(text))
	if err != nil {
		if errors.Is(err, table.ErrNoHeader) {
			return nil, errs.NewSkip(source, "empty file", nil)
		}
		return nil, errs.NewSkip(source, "malformed csv", err)
	}
	return tb, nil
}
