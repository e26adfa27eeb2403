package parser

import (
	"context"
	"errors"
	"fmt"
	"os"

	"firewall-network-graph/internal/model"
)

// ErrSourceNotFound marks a record source that is missing or unreadable.
var ErrSourceNotFound = errors.New("firewall data source not found")

// Source yields the current rule record set.
type Source interface {
	Records(ctx context.Context) ([]model.Record, error)
}

// FileSource reads records from a spreadsheet, CSV export or FortiGate
// configuration on disk. The file is re-read on every call.
type FileSource struct {
	Path   string
	Format Format
}

func NewFileSource(path string, format Format) *FileSource {
	return &FileSource{Path: path, Format: DetectFormat(path, format)}
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}

func (s *FileSource) Records(ctx context.Context) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}
	defer f.Close()

	return Parse(f, s.Format), nil
}

// StaticSource serves a fixed record set.
type StaticSource []model.Record

func (s StaticSource) Records(ctx context.Context) ([]model.Record, error) {
	return s, ctx.Err()
}
