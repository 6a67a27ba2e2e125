package mapengine

import (
	"math"
	"slices"
	"time"

	"github.com/couchcryptid/memory-map/internal/basemap"
	"github.com/couchcryptid/memory-map/internal/domain"
)

// flightBase is the duration of a fly-to at speed 1.
const flightBase = 1200 * time.Millisecond

// Camera is the headless engine's view state.
type Camera struct {
	Center      domain.LatLon `json:"center"`
	Zoom        float64       `json:"zoom"`
	Bearing     float64       `json:"bearing"`
	Pitch       float64       `json:"pitch"`
	Interactive bool          `json:"interactive"`
	Flying      bool          `json:"flying"`
}

type flight struct {
	opts     FlyToOptions
	duration time.Duration
	elapsed  time.Duration
	onArrive func()
}

// Headless is an in-memory Map. Flights and style loads complete on Tick,
// so callers observe the same asynchronous ordering a rendering library has.
type Headless struct {
	camera         Camera
	viewportHeight float64

	markers   map[int]Marker
	order     []int
	openPopup int

	flight *flight

	style        basemap.Style
	pendingStyle func()

	fitted *Bounds
}

// NewHeadless creates an engine at the default view over the Kanto plain.
func NewHeadless(viewportHeight float64) *Headless {
	return &Headless{
		camera: Camera{
			Center:      domain.LatLon{Lat: 35.605, Lon: 140.123},
			Zoom:        10,
			Pitch:       60,
			Bearing:     -17.6,
			Interactive: true,
		},
		viewportHeight: viewportHeight,
		markers:        map[int]Marker{},
	}
}

func (h *Headless) ClearMarkers() {
	clear(h.markers)
	h.order = h.order[:0]
	h.openPopup = 0
}

func (h *Headless) AddMarker(m Marker) {
	if _, ok := h.markers[m.ID]; !ok {
		h.order = append(h.order, m.ID)
	}
	h.markers[m.ID] = m
}

func (h *Headless) HasMarker(id int) bool {
	_, ok := h.markers[id]
	return ok
}

func (h *Headless) MarkerCount() int { return len(h.markers) }

// Markers returns the placed markers in placement order.
func (h *Headless) Markers() []Marker {
	out := make([]Marker, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.markers[id])
	}
	return out
}

func (h *Headless) OpenPopup(id int) bool {
	if !h.HasMarker(id) {
		return false
	}
	h.openPopup = id
	return true
}

// OpenPopupID is the id of the marker whose popup is open, or 0.
func (h *Headless) OpenPopupID() int { return h.openPopup }

func (h *Headless) FlyTo(opts FlyToOptions, onArrive func()) {
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}
	h.flight = &flight{
		opts:     opts,
		duration: time.Duration(float64(flightBase) / speed),
		onArrive: onArrive,
	}
	h.camera.Flying = true
}

func (h *Headless) Stop() {
	h.flight = nil
	h.camera.Flying = false
}

func (h *Headless) SetInteractive(enabled bool) { h.camera.Interactive = enabled }

func (h *Headless) Bearing() float64 { return h.camera.Bearing }

// SetBearing normalizes deg into [0, 360).
func (h *Headless) SetBearing(deg float64) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	h.camera.Bearing = deg
}

func (h *Headless) ViewportHeight() float64 { return h.viewportHeight }

func (h *Headless) FitBounds(b Bounds, opts FitOptions) {
	h.fitted = &b
	h.camera.Center = domain.LatLon{Lat: (b.South + b.North) / 2, Lon: (b.West + b.East) / 2}
	if opts.MaxZoom > 0 && h.camera.Zoom > opts.MaxZoom {
		h.camera.Zoom = opts.MaxZoom
	}
}

// Fitted returns the last bounds passed to FitBounds.
func (h *Headless) Fitted() (Bounds, bool) {
	if h.fitted == nil {
		return Bounds{}, false
	}
	return *h.fitted, true
}

func (h *Headless) SetStyle(style basemap.Style, onLoad func()) {
	h.style = style
	h.pendingStyle = onLoad
	if h.pendingStyle == nil {
		h.pendingStyle = func() {}
	}
}

// Style returns the current style document.
func (h *Headless) Style() basemap.Style { return h.style }

// Camera returns the current view state.
func (h *Headless) Camera() Camera { return h.camera }

// MarkerIDs returns the placed marker ids, sorted.
func (h *Headless) MarkerIDs() []int {
	ids := slices.Clone(h.order)
	slices.Sort(ids)
	return ids
}

// Tick advances pending style loads and the active flight by dt.
func (h *Headless) Tick(dt time.Duration) {
	if h.pendingStyle != nil {
		onLoad := h.pendingStyle
		h.pendingStyle = nil
		onLoad()
	}

	f := h.flight
	if f == nil {
		return
	}
	f.elapsed += dt
	if f.elapsed < f.duration {
		return
	}
	h.flight = nil
	h.camera.Flying = false
	h.camera.Center = f.opts.Center
	h.camera.Zoom = f.opts.Zoom
	if f.onArrive != nil {
		f.onArrive()
	}
}
