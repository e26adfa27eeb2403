package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"firewall-network-graph/internal/model"
)

type Format string

const (
	FormatAuto      Format = "auto"
	FormatXLSX      Format = "xlsx"
	FormatCSV       Format = "csv"
	FormatFortiGate Format = "fortigate"
)

// DetectFormat resolves FormatAuto from the file extension.
func DetectFormat(path string, format Format) Format {
	if format != "" && format != FormatAuto {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".conf", ".cfg", ".txt":
		return FormatFortiGate
	default:
		return FormatXLSX
	}
}

// Parse reads records in the given format. It never fails: any read or parse
// error is logged and yields an empty slice.
func Parse(r io.Reader, format Format) []model.Record {
	var (
		records []model.Record
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = parseCSV(r)
	case FormatFortiGate:
		records, err = parseFortiGate(r)
	case FormatXLSX, FormatAuto, "":
		records, err = parseXLSX(r)
	default:
		err = fmt.Errorf("unknown record format: %s", format)
	}
	if err != nil {
		slog.Warn("Failed to parse firewall records", "format", format, "error", err)
		return []model.Record{}
	}
	return records
}

func parseCSV(r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv: %w", err)
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return NormalizeRows(rows), nil
}
