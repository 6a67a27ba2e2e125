// Package mapengine is the port to the map-rendering library: markers with
// popups, camera animation, gesture locking and basemap styles.
package mapengine

import (
	"github.com/couchcryptid/memory-map/internal/basemap"
	"github.com/couchcryptid/memory-map/internal/domain"
)

// Popup is the detail card attached to a marker.
type Popup struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Genre       string   `json:"genre,omitempty"`
	GenreText   string   `json:"genre_text,omitempty"`
	Hashtags    []string `json:"hashtags,omitempty"`
	AvatarURL   string   `json:"avatar_url"`
	PlaceName   string   `json:"place_name,omitempty"`
}

// Marker is one placed record. Position is stored lat/lon; engines that
// take lon/lat use Position.LngLat.
type Marker struct {
	ID       int           `json:"id"`
	Position domain.LatLon `json:"position"`
	IconURL  string        `json:"icon_url"`
	Popup    Popup         `json:"popup"`
}

// FlyToOptions describes one animated camera move.
type FlyToOptions struct {
	Center domain.LatLon
	Zoom   float64
	Speed  float64
	// Offset is the [x, y] pixel offset of the target from the viewport center.
	Offset [2]float64
}

// Bounds is a lat/lon extent.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// FitOptions controls FitBounds.
type FitOptions struct {
	Padding float64
	MaxZoom float64
}

// Map is what the core needs from a map-rendering library.
type Map interface {
	ClearMarkers()
	AddMarker(m Marker)
	HasMarker(id int) bool
	MarkerCount() int
	OpenPopup(id int) bool

	// FlyTo starts an animated move. onArrive runs once the move completes
	// and never runs if Stop cancels it first.
	FlyTo(opts FlyToOptions, onArrive func())
	Stop()
	SetInteractive(enabled bool)
	Bearing() float64
	SetBearing(deg float64)
	ViewportHeight() float64
	FitBounds(b Bounds, opts FitOptions)

	// SetStyle swaps the basemap. onLoad runs once the new style has loaded.
	SetStyle(style basemap.Style, onLoad func())
}
