// Package source fetches spreadsheet-shaped memory data from an ordered list
// of sources and returns the rows of the first one that answers with a
// well-formed document.
package source

import (
	"context"
	"errors"

	"github.com/couchcryptid/memory-map/internal/domain"
)

var (
	// ErrTransport marks network, I/O and non-200 HTTP failures.
	ErrTransport = errors.New("source transport failure")

	// ErrFormat marks responses that are not the expected JSON shape.
	ErrFormat = errors.New("source format failure")

	// ErrNotConfigured marks a source that lacks the settings it needs.
	ErrNotConfigured = errors.New("source not configured")

	// ErrExhausted is returned by Chain.Fetch when every source failed.
	ErrExhausted = errors.New("all data sources failed")
)

// Source yields the raw rows of one data document, header row first.
// An empty, well-formed document is a valid result, not an error.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawRow, error)
}

// Result is the outcome of a successful chain fetch.
type Result struct {
	Source string
	Rows   []domain.RawRow
}
