package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/observability"
	"github.com/couchcryptid/memory-map/internal/pipeline"
	"github.com/couchcryptid/memory-map/internal/source"
	"github.com/couchcryptid/memory-map/internal/store"
)

// --- mocks ---

type mockExtractor struct {
	result source.Result
	err    error
}

func (m *mockExtractor) Fetch(context.Context) (source.Result, error) {
	return m.result, m.err
}

type mockGeocoder struct {
	calls int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, lat, lon float64) (domain.PlaceLookup, error) {
	m.calls++
	return domain.PlaceLookup{PlaceName: fmt.Sprintf("%.1f,%.1f", lat, lon)}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sheetRows() []domain.RawRow {
	return []domain.RawRow{
		{"Name", "Title", "Coordinates", "Avatar"},
		{"Aiko", "Station", "35.6, 139.7", "cat"},
		{"Ken", "Harbor", "not a place", "dog"},
		{"Mio", "Festival", "(34.7, 135.5)", ""},
		{"Sora", "Bridge", "[33.6, 130.4]", "bird"},
	}
}

// --- tests ---

func TestPipeline_Run_LoadsStore(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	ext := &mockExtractor{result: source.Result{Source: "mirror", Rows: sheetRows()}}
	tfm := pipeline.NewTransformer(domain.DefaultAvatarPath, nil, discardLogger(), metrics)
	st := store.New()

	p := pipeline.New(ext, tfm, st, discardLogger(), metrics)
	require.Error(t, p.CheckReadiness(context.Background()))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mirror", summary.Source)
	assert.Equal(t, 4, summary.Report.DataRows)
	assert.Equal(t, 2, summary.Report.Admitted)
	require.NoError(t, p.CheckReadiness(context.Background()))

	ids := make([]int, 0, st.Len())
	for _, r := range st.All() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{1, 4}, ids)
	if diff := cmp.Diff(st.All(), st.Filtered()); diff != "" {
		t.Errorf("filtered subset should equal the canonical set (-all +filtered):\n%s", diff)
	}

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DataLoaded), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RecordsAdmitted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RecordsDropped.WithLabelValues(domain.ReasonCoordinates)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RecordsDropped.WithLabelValues(domain.ReasonAvatar)), 0)
}

func TestPipeline_Run_Exhausted(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	ext := &mockExtractor{err: fmt.Errorf("%w: %w", source.ErrExhausted, errors.New("boom"))}
	st := store.New()

	p := pipeline.New(ext, pipeline.NewTransformer(domain.DefaultAvatarPath, nil, discardLogger(), metrics), st, discardLogger(), metrics)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrExhausted)
	assert.False(t, st.Loaded())
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.DataLoaded), 0)
}

func TestPipeline_Run_EmptySource(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	ext := &mockExtractor{result: source.Result{Source: "sheets", Rows: []domain.RawRow{}}}
	st := store.New()

	p := pipeline.New(ext, pipeline.NewTransformer(domain.DefaultAvatarPath, nil, discardLogger(), metrics), st, discardLogger(), metrics)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Report.Admitted)
	assert.True(t, st.Loaded())
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestRecordTransformer_Enrichment(t *testing.T) {
	geo := &mockGeocoder{}
	tfm := pipeline.NewTransformer(domain.DefaultAvatarPath, geo, discardLogger(), observability.NewMetricsForTesting())

	records, report := tfm.Transform(context.Background(), sheetRows())
	require.Len(t, records, 2)
	assert.Equal(t, 2, report.Admitted)
	assert.Equal(t, 2, geo.calls)
	assert.Equal(t, "35.6,139.7", records[0].PlaceName)
	assert.Equal(t, "images/avatars/bird.png", records[1].AvatarURL)
}

func TestRecordTransformer_EnrichmentStopsOnCancel(t *testing.T) {
	geo := &mockGeocoder{}
	tfm := pipeline.NewTransformer(domain.DefaultAvatarPath, geo, discardLogger(), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, _ := tfm.Transform(ctx, sheetRows())
	require.Len(t, records, 2)
	assert.Equal(t, 0, geo.calls)
	assert.Empty(t, records[0].PlaceName)
}
