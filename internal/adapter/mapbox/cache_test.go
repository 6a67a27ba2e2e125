package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/observability"
)

type countingGeocoder struct {
	calls  int
	result domain.PlaceLookup
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.PlaceLookup, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: domain.PlaceLookup{PlaceName: "丸の内"}}
	m := observability.NewMetricsForTesting()
	cached := NewCachedGeocoder(inner, 10, m)

	r1, err := cached.ReverseGeocode(context.Background(), 35.6812, 139.7671)
	require.NoError(t, err)
	r2, err := cached.ReverseGeocode(context.Background(), 35.6812, 139.7671)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.GeocodeCache.WithLabelValues("hit")), 0)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 0, 0)
	_, _ = cached.ReverseGeocode(context.Background(), 0, 0)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.cache.len())
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("timeout")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 35, 139)
	require.Error(t, err)

	inner.err = nil
	inner.result = domain.PlaceLookup{PlaceName: "Somewhere"}
	r, err := cached.ReverseGeocode(context.Background(), 35, 139)
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", r.PlaceName)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_RoundsKeys(t *testing.T) {
	inner := &countingGeocoder{result: domain.PlaceLookup{PlaceName: "Here"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 35.1234561, 139.0)
	_, _ = cached.ReverseGeocode(context.Background(), 35.1234559, 139.0)

	assert.Equal(t, 1, inner.calls)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", domain.PlaceLookup{PlaceName: "A"})
	c.put("b", domain.PlaceLookup{PlaceName: "B"})

	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", domain.PlaceLookup{PlaceName: "C"})

	_, ok = c.get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", domain.PlaceLookup{PlaceName: "old"})
	c.put("a", domain.PlaceLookup{PlaceName: "new"})

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "new", v.PlaceName)
	assert.Equal(t, 1, c.len())
}
