// Package basemap holds the static timeline of aerial-imagery basemaps and
// tracks which one is active.
package basemap

import (
	"errors"
	"fmt"
)

// ErrUnknownBasemap is returned for an id not in the catalog.
var ErrUnknownBasemap = errors.New("unknown basemap")

// Descriptor is one entry of the basemap timeline.
type Descriptor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Note  string `json:"note,omitempty"`
	Style Style  `json:"style"`
}

// Style is a raster style document in the map engine's style format.
type Style struct {
	Version int                     `json:"version"`
	Sources map[string]RasterSource `json:"sources"`
	Layers  []Layer                 `json:"layers"`
}

// RasterSource is a tiled raster source.
type RasterSource struct {
	Type        string   `json:"type"`
	Tiles       []string `json:"tiles"`
	TileSize    int      `json:"tileSize"`
	Attribution string   `json:"attribution,omitempty"`
	MaxZoom     int      `json:"maxzoom,omitempty"`
}

// Layer draws a source.
type Layer struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Source  string `json:"source"`
	MinZoom *int   `json:"minzoom,omitempty"`
	MaxZoom *int   `json:"maxzoom,omitempty"`
}

const (
	gsiAttribution  = `地理院タイル &copy; <a href="https://www.gsi.go.jp/" target="_blank">国土地理院</a>`
	esriAttribution = `Tiles &copy; <a href="https://www.esri.com/">Esri</a> — Source: Esri, Earthstar Geographics`
	gsiNote         = "Coverage may be limited."
	gsiJPGNote      = "Coverage may be limited. JPG format."
)

// gsi builds a Geospatial Information Authority of Japan layer, which
// carries explicit zoom limits on the layer rather than the source.
func gsi(id, name, note, path string) Descriptor {
	minZoom, maxZoom := 0, 17
	return Descriptor{
		ID:    id,
		Name:  name,
		Group: "GSI",
		Note:  note,
		Style: Style{
			Version: 8,
			Sources: map[string]RasterSource{id: {
				Type:        "raster",
				Tiles:       []string{"https://cyberjapandata.gsi.go.jp/xyz/" + path},
				TileSize:    256,
				Attribution: gsiAttribution,
			}},
			Layers: []Layer{{ID: id + "-layer", Type: "raster", Source: id, MinZoom: &minZoom, MaxZoom: &maxZoom}},
		},
	}
}

// DefaultCatalog returns the timeline in display order, oldest first.
func DefaultCatalog() []Descriptor {
	return []Descriptor{
		gsi("gsi-ort-old10", "1961", gsiNote, "ort_old10/{z}/{x}/{y}.png"),
		gsi("gsi-gazo1", "1974", gsiJPGNote, "gazo1/{z}/{x}/{y}.jpg"),
		gsi("gsi-gazo2", "1979", gsiJPGNote, "gazo2/{z}/{x}/{y}.jpg"),
		gsi("gsi-gazo3", "1984", gsiJPGNote, "gazo3/{z}/{x}/{y}.jpg"),
		gsi("gsi-gazo4", "1987", gsiJPGNote, "gazo4/{z}/{x}/{y}.jpg"),
		{
			ID:    "esri-world-imagery",
			Name:  "Today",
			Group: "Esri",
			Note:  "Tiles &copy; Esri — Source: Esri, Earthstar Geographics. Free to use for non-commercial applications with attribution.",
			Style: Style{
				Version: 8,
				Sources: map[string]RasterSource{"esri-world-imagery": {
					Type:        "raster",
					Tiles:       []string{"https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}"},
					TileSize:    256,
					Attribution: esriAttribution,
					MaxZoom:     19,
				}},
				Layers: []Layer{{ID: "esri-world-imagery-layer", Type: "raster", Source: "esri-world-imagery"}},
			},
		},
	}
}

// Catalog is the basemap timeline plus the active selection.
type Catalog struct {
	entries []Descriptor
	active  int
}

// NewCatalog creates a catalog with defaultID active. An unknown default
// falls back to the first entry; fellBack reports that case.
func NewCatalog(entries []Descriptor, defaultID string) (c *Catalog, fellBack bool, err error) {
	if len(entries) == 0 {
		return nil, false, errors.New("basemap catalog is empty")
	}
	c = &Catalog{entries: entries}
	i, ok := c.index(defaultID)
	if !ok {
		return c, true, nil
	}
	c.active = i
	return c, false, nil
}

func (c *Catalog) index(id string) (int, bool) {
	for i, d := range c.entries {
		if d.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Entries returns the timeline in display order.
func (c *Catalog) Entries() []Descriptor {
	out := make([]Descriptor, len(c.entries))
	copy(out, c.entries)
	return out
}

// Active returns the active basemap.
func (c *Catalog) Active() Descriptor {
	return c.entries[c.active]
}

// Lookup finds a basemap by id.
func (c *Catalog) Lookup(id string) (Descriptor, bool) {
	i, ok := c.index(id)
	if !ok {
		return Descriptor{}, false
	}
	return c.entries[i], true
}

// Switch makes id active. It reports false when id is already active.
func (c *Catalog) Switch(id string) (Descriptor, bool, error) {
	i, ok := c.index(id)
	if !ok {
		return Descriptor{}, false, fmt.Errorf("%w: %q", ErrUnknownBasemap, id)
	}
	if i == c.active {
		return c.entries[i], false, nil
	}
	c.active = i
	return c.entries[i], true, nil
}
