package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/source"
)

func TestWriteDocument_RoundTripsThroughLocalSource(t *testing.T) {
	doc := map[string][]domain.RawRow{
		"map": {
			{"名前", "Coordinates", "Avatar"},
			{"あいこ", "35.6812,139.7671", "cat"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeDocument(&buf, doc))
	assert.Contains(t, buf.String(), "あいこ")
	assert.Contains(t, buf.String(), "\n    \"map\"")

	path := filepath.Join(t.TempDir(), "sheets_data.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	rows, err := source.NewFile(path, "map").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc["map"], rows)
}

func TestSaveDocument(t *testing.T) {
	doc := map[string][]domain.RawRow{"map": {{"Name"}, {"Ken"}}}

	path := filepath.Join(t.TempDir(), "sheets_data.json")
	require.NoError(t, saveDocument(path, doc))

	rows, err := source.NewFile(path, "map").Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc["map"], rows)
}

func TestSaveDocument_ReportsFailures(t *testing.T) {
	doc := map[string][]domain.RawRow{"map": {{"Name"}, {"Ken"}}}

	err := saveDocument(filepath.Join(t.TempDir(), "missing", "out.json"), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")

	if _, statErr := os.Stat("/dev/full"); statErr != nil {
		t.Skip("/dev/full not available")
	}
	err = saveDocument("/dev/full", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/full")
}
