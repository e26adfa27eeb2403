package parser

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"firewall-network-graph/internal/model"
)

// parseXLSX reads the first worksheet of a workbook.
func parseXLSX(r io.Reader) ([]model.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []model.Record{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not read sheet %q: %w", sheets[0], err)
	}
	return NormalizeRows(rows), nil
}
