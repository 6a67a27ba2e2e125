// Package view keeps the marker layer, sidebar, card scroller and results
// counter consistent with the current filtered subset.
package view

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/filter"
	"github.com/couchcryptid/memory-map/internal/mapengine"
	"github.com/couchcryptid/memory-map/internal/observability"
)

// Entry is one sidebar item or scroller card.
type Entry struct {
	ID        int    `json:"id"`
	Author    string `json:"author"`
	AvatarURL string `json:"avatar_url"`
}

// Sidebar renders the list of records.
type Sidebar interface {
	RenderSidebar(entries []Entry)
}

// Scroller renders the horizontal card strip.
type Scroller interface {
	RenderScroller(cards []Entry)
	// HighlightCard marks one card selected and clears the rest. It reports
	// false when no card has that id.
	HighlightCard(id int) bool
}

// Counter renders the results count.
type Counter interface {
	RenderCounter(text string)
}

// Result is what a rebuild produced.
type Result struct {
	Subset         int `json:"subset"`
	Markers        int `json:"markers"`
	SidebarEntries int `json:"sidebar_entries"`
	ScrollerCards  int `json:"scroller_cards"`
}

// Synchronizer rebuilds every dependent view from a filtered subset.
type Synchronizer struct {
	engine   mapengine.Map
	sidebar  Sidebar
	scroller Scroller
	counter  Counter
	rng      *rand.Rand
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewSynchronizer wires the views. rng drives the scroller shuffle.
func NewSynchronizer(engine mapengine.Map, sidebar Sidebar, scroller Scroller, counter Counter, rng *rand.Rand, logger *slog.Logger, metrics *observability.Metrics) *Synchronizer {
	return &Synchronizer{
		engine:   engine,
		sidebar:  sidebar,
		scroller: scroller,
		counter:  counter,
		rng:      rng,
		logger:   logger,
		metrics:  metrics,
	}
}

// Rebuild redraws markers, sidebar, scroller and counter, in that order,
// even for an empty subset.
func (s *Synchronizer) Rebuild(records []domain.Record, q filter.Query) Result {
	start := time.Now()
	defer func() { s.metrics.ViewRebuildDuration.Observe(time.Since(start).Seconds()) }()

	res := Result{Subset: len(records)}
	res.Markers = s.RebuildMarkers(records)

	entries := listEntries(records)
	s.sidebar.RenderSidebar(entries)
	res.SidebarEntries = len(entries)

	cards := shuffled(s.rng, entries)
	s.scroller.RenderScroller(cards)
	res.ScrollerCards = len(cards)

	s.counter.RenderCounter(q.Describe(len(records)))
	return res
}

// RebuildMarkers replaces the marker layer with one marker per
// placement-valid record.
func (s *Synchronizer) RebuildMarkers(records []domain.Record) int {
	s.engine.ClearMarkers()
	n := 0
	for _, r := range records {
		pos, ok := domain.Placeable(r)
		if !ok {
			s.logger.Debug("record skipped in marker layer", "record_id", r.ID)
			continue
		}
		s.engine.AddMarker(mapengine.Marker{
			ID:       r.ID,
			Position: pos,
			IconURL:  r.AvatarURL,
			Popup:    PopupFor(r),
		})
		n++
	}
	return n
}

// Highlight marks the scroller card for id as selected.
func (s *Synchronizer) Highlight(id int) bool {
	return s.scroller.HighlightCard(id)
}

// PopupFor builds the marker popup for r. Tags in Genre and Hashtags are
// the terms a popup click feeds back into free-text search.
func PopupFor(r domain.Record) mapengine.Popup {
	return mapengine.Popup{
		Title:       orDefault(r.Title, "N/A"),
		Author:      orDefault(r.Author, "N/A"),
		Description: orDefault(r.Description, "No description."),
		Genre:       r.GenreWord(),
		GenreText:   r.GenreText,
		Hashtags:    r.Hashtags(),
		AvatarURL:   r.AvatarURL,
		PlaceName:   r.PlaceName,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func listEntries(records []domain.Record) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		if !domain.Listable(r) {
			continue
		}
		entries = append(entries, Entry{ID: r.ID, Author: r.Author, AvatarURL: r.AvatarURL})
	}
	return entries
}

// shuffled returns a Fisher–Yates permutation of entries.
func shuffled(rng *rand.Rand, entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
