package source

import (
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/memory-map/internal/domain"
)

// FileSource reads the bundled local copy of the JSON snapshot.
type FileSource struct {
	path  string
	field string
}

// NewFile creates the tertiary source.
func NewFile(path, field string) *FileSource {
	return &FileSource{path: path, field: field}
}

func (s *FileSource) Name() string { return "local" }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.RawRow, error) {
	if s.path == "" {
		return nil, fmt.Errorf("local: %w", ErrNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("local: %w: %w", ErrTransport, err)
	}

	rows, err := decodeRows(body, s.field)
	if err != nil {
		return nil, fmt.Errorf("local %s: %w", s.path, err)
	}
	return rows, nil
}
