package mapengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/memory-map/internal/basemap"
	"github.com/couchcryptid/memory-map/internal/domain"
)

func TestHeadless_Markers(t *testing.T) {
	h := NewHeadless(800)

	h.AddMarker(Marker{ID: 3, Position: domain.LatLon{Lat: 35.6, Lon: 139.7}})
	h.AddMarker(Marker{ID: 1})
	assert.Equal(t, 2, h.MarkerCount())
	assert.True(t, h.HasMarker(3))
	assert.Equal(t, []int{1, 3}, h.MarkerIDs())
	assert.Equal(t, 3, h.Markers()[0].ID)

	require.True(t, h.OpenPopup(3))
	assert.Equal(t, 3, h.OpenPopupID())
	assert.False(t, h.OpenPopup(9))

	h.ClearMarkers()
	assert.Equal(t, 0, h.MarkerCount())
	assert.Equal(t, 0, h.OpenPopupID())
}

func TestHeadless_FlightCompletesOnTick(t *testing.T) {
	h := NewHeadless(800)
	arrived := 0
	target := domain.LatLon{Lat: 35.6, Lon: 139.7}

	h.FlyTo(FlyToOptions{Center: target, Zoom: 16, Speed: 0.5}, func() { arrived++ })
	assert.True(t, h.Camera().Flying)

	h.Tick(time.Second)
	assert.Equal(t, 0, arrived)

	h.Tick(2 * time.Second)
	assert.Equal(t, 1, arrived)
	assert.False(t, h.Camera().Flying)
	assert.Equal(t, target, h.Camera().Center)
	assert.InDelta(t, 16, h.Camera().Zoom, 0)

	h.Tick(time.Second)
	assert.Equal(t, 1, arrived)
}

func TestHeadless_StopCancelsArrival(t *testing.T) {
	h := NewHeadless(800)
	arrived := false

	h.FlyTo(FlyToOptions{Speed: 1}, func() { arrived = true })
	h.Stop()
	h.Tick(5 * time.Second)

	assert.False(t, arrived)
	assert.False(t, h.Camera().Flying)
}

func TestHeadless_SetBearingNormalizes(t *testing.T) {
	h := NewHeadless(800)
	h.SetBearing(370)
	assert.InDelta(t, 10, h.Bearing(), 1e-9)
	h.SetBearing(-30)
	assert.InDelta(t, 330, h.Bearing(), 1e-9)
}

func TestHeadless_StyleLoadsOnNextTick(t *testing.T) {
	h := NewHeadless(800)
	loaded := 0
	style := basemap.DefaultCatalog()[0].Style

	h.SetStyle(style, func() { loaded++ })
	assert.Equal(t, 0, loaded)
	assert.Equal(t, style.Version, h.Style().Version)

	h.Tick(0)
	assert.Equal(t, 1, loaded)
	h.Tick(0)
	assert.Equal(t, 1, loaded)
}

func TestHeadless_FitBounds(t *testing.T) {
	h := NewHeadless(800)
	h.FitBounds(Bounds{South: 34, West: 135, North: 36, East: 140}, FitOptions{Padding: 100, MaxZoom: 17})

	b, ok := h.Fitted()
	require.True(t, ok)
	assert.InDelta(t, 34, b.South, 0)
	assert.Equal(t, domain.LatLon{Lat: 35, Lon: 137.5}, h.Camera().Center)
}
