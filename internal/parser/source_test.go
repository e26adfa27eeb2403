package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSourceReportsMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "firewall.xlsx"), FormatAuto)

	records, err := src.Records(context.Background())
	require.ErrorIs(t, err, ErrSourceNotFound)
	assert.Nil(t, records)
}

func TestFileSourceReadsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	require.NoError(t, os.WriteFile(path, []byte("Source IP,Target IP\n10.0.0.1,10.0.0.2\n"), 0o644))

	src := NewFileSource(path, FormatAuto)
	assert.Equal(t, FormatCSV, src.Format)

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "10.0.0.2", records[0].TargetIP)
}

func TestStaticSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := StaticSource{}.Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
