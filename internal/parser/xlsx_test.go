package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseXLSXReadsFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"來源IP", "來源區域", "目標IP", "目標區域", "目標埠號", "服務"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"10.0.0.1", "DMZ", "10.0.0.2", "LAN", 443, "HTTPS"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"10.0.0.9", "DMZ"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records := Parse(buf, FormatXLSX)
	require.Len(t, records, 1)
	assert.Equal(t, "10.0.0.1", records[0].SourceIP)
	assert.Equal(t, "LAN", records[0].TargetZone)
	assert.Equal(t, "443", records[0].TargetPort)
	assert.Equal(t, "HTTPS", records[0].Service)
}
