// Package app is the application-state object: it owns the record store,
// the active filter, the camera and the pill, and applies commands to them.
//
// An App is not safe for concurrent use. Runtime serializes access.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/memory-map/internal/basemap"
	"github.com/couchcryptid/memory-map/internal/camera"
	"github.com/couchcryptid/memory-map/internal/filter"
	"github.com/couchcryptid/memory-map/internal/mapengine"
	"github.com/couchcryptid/memory-map/internal/observability"
	"github.com/couchcryptid/memory-map/internal/pill"
	"github.com/couchcryptid/memory-map/internal/store"
	"github.com/couchcryptid/memory-map/internal/view"
)

var (
	// ErrNotLoaded is returned when starting before a record set is loaded.
	ErrNotLoaded = errors.New("no record set loaded")

	// ErrNotStarted is returned for commands dispatched before Start.
	ErrNotStarted = errors.New("app not started")

	// ErrUnknownCommand is returned for a command type the App does not handle.
	ErrUnknownCommand = errors.New("unknown command")
)

// Overlay is the welcome overlay.
type Overlay struct {
	Open bool   `json:"open"`
	Text string `json:"text"`
}

// Search is the search box.
type Search struct {
	Active bool   `json:"active"`
	Input  string `json:"input"`
}

// Deps are the collaborators an App drives.
type Deps struct {
	Store    *store.Store
	Views    *view.Synchronizer
	Camera   *camera.Controller
	Pill     *pill.Scheduler
	Basemaps *basemap.Catalog
	Engine   mapengine.Map
	Sink     EventSink
	Clock    clockwork.Clock
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// App holds all session state.
type App struct {
	store    *store.Store
	views    *view.Synchronizer
	camera   *camera.Controller
	pill     *pill.Scheduler
	basemaps *basemap.Catalog
	engine   mapengine.Map
	sink     EventSink
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	session string
	started bool
	query   filter.Query
	search  Search
	overlay Overlay
	result  view.Result
}

// New creates an App with a fresh session id.
func New(d Deps) *App {
	sink := d.Sink
	if sink == nil {
		sink = NopSink{}
	}
	return &App{
		store:    d.Store,
		views:    d.Views,
		camera:   d.Camera,
		pill:     d.Pill,
		basemaps: d.Basemaps,
		engine:   d.Engine,
		sink:     sink,
		clock:    d.Clock,
		logger:   d.Logger,
		metrics:  d.Metrics,
		session:  uuid.NewString(),
		query:    filter.All(),
	}
}

// SessionID identifies this session in telemetry.
func (a *App) SessionID() string { return a.session }

// Start applies the deep link, renders every view, loads the active basemap
// and starts the pill. It runs once per session.
func (a *App) Start(rawQuery string) error {
	if !a.store.Loaded() {
		return ErrNotLoaded
	}
	if a.started {
		return nil
	}
	a.started = true

	link := ParseDeepLink(rawQuery)
	a.overlay = Overlay{Open: true, Text: fmt.Sprintf("Mapping %d memories...", a.store.Len())}

	if link.Query.IsAll() {
		a.applyQuery(filter.All())
	} else {
		a.search = Search{Active: true, Input: link.Term}
		a.applyQuery(link.Query)
		a.overlay.Text = fmt.Sprintf("Mapping %d memories based on %q...", a.store.FilteredLen(), link.Term)
	}

	active := a.basemaps.Active()
	a.engine.SetStyle(active.Style, a.onStyleLoad)
	a.pill.Start()

	a.logger.Info("session started",
		"session_id", a.session,
		"records", a.store.Len(),
		"query_mode", string(a.query.Mode),
		"basemap", active.ID,
	)
	a.emit(Event{Kind: "start", Term: link.Term, Basemap: active.ID})
	return nil
}

// Stop halts the pill and any camera motion.
func (a *App) Stop() {
	a.pill.Stop()
	a.camera.Interrupt()
}

// Dispatch applies one command. Every view affected by the command is
// rebuilt before Dispatch returns.
func (a *App) Dispatch(cmd Command) error {
	if !a.started {
		return ErrNotStarted
	}
	a.metrics.Commands.WithLabelValues(cmd.Kind()).Inc()
	a.logger.Debug("dispatch", "kind", cmd.Kind())

	err := a.apply(cmd)

	e := eventFor(cmd)
	if err != nil {
		e.Error = err.Error()
	}
	a.emit(e)
	return err
}

func (a *App) apply(cmd Command) error {
	switch c := cmd.(type) {
	case SetFilter:
		a.search = Search{Active: true, Input: c.Term}
		a.applyQuery(filter.Text(c.Term))
	case SetHashtag:
		a.applyQuery(filter.Hashtag(c.Tag))
	case ToggleSearch:
		a.search.Active = !a.search.Active
		if !a.search.Active {
			a.search.Input = ""
			a.applyQuery(filter.All())
		}
	case GoToRecord:
		return a.camera.GoTo(c.ID)
	case SwitchBasemap:
		a.switchBasemap(c.ID)
	case DismissOverlay:
		a.dismissOverlay()
	case MapClick:
		a.camera.Click()
	case UserGesture:
		a.camera.Interrupt()
	case PillClick:
		id, ok := a.pill.Click()
		if !ok {
			return nil
		}
		a.dismissOverlay()
		return a.camera.GoTo(id)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return nil
}

// applyQuery replaces the filter, stores the new subset and rebuilds every
// view from it.
func (a *App) applyQuery(q filter.Query) {
	a.query = q
	subset := filter.Apply(a.store.All(), q)
	a.store.SetFiltered(subset)

	mode := q.Mode
	if q.IsAll() {
		mode = filter.ModeAll
	}
	a.metrics.FilterApplications.WithLabelValues(string(mode)).Inc()
	a.metrics.FilteredRecords.Set(float64(len(subset)))

	a.result = a.views.Rebuild(subset, q)
	if !a.overlay.Open {
		a.camera.FitBounds(subset, false)
	}
}

func (a *App) dismissOverlay() {
	if !a.overlay.Open {
		return
	}
	a.overlay.Open = false
	a.camera.FitBounds(a.store.Filtered(), false)
}

func (a *App) switchBasemap(id string) {
	d, changed, err := a.basemaps.Switch(id)
	if err != nil {
		a.logger.Warn("basemap switch ignored", "basemap", id, "error", err)
		return
	}
	if !changed {
		a.logger.Debug("basemap already active", "basemap", id)
		return
	}
	a.logger.Info("switching basemap", "basemap", d.ID, "name", d.Name)
	a.engine.SetStyle(d.Style, a.onStyleLoad)
}

// onStyleLoad re-places markers for the current subset after a style load.
func (a *App) onStyleLoad() {
	n := a.views.RebuildMarkers(a.store.Filtered())
	a.result.Markers = n
	a.logger.Debug("style loaded", "basemap", a.basemaps.Active().ID, "markers", n)
}

type ticker interface {
	Tick(dt time.Duration)
}

// Tick advances the engine, the camera rotation and the pill by one frame.
func (a *App) Tick(dt time.Duration) {
	if !a.started {
		return
	}
	if t, ok := a.engine.(ticker); ok {
		t.Tick(dt)
	}
	a.camera.Tick(dt)
	a.pill.Tick()
}

func (a *App) emit(e Event) {
	e.SessionID = a.session
	e.At = a.clock.Now()
	a.sink.Emit(e)
}

// State is a point-in-time view of the session.
type State struct {
	SessionID  string       `json:"session_id"`
	Started    bool         `json:"started"`
	Records    int          `json:"records"`
	Filtered   int          `json:"filtered"`
	Query      filter.Query `json:"query"`
	Counter    string       `json:"counter"`
	Search     Search       `json:"search"`
	Overlay    Overlay      `json:"overlay"`
	Views      view.Result  `json:"views"`
	Camera     camera.State `json:"camera"`
	Target     int          `json:"target,omitempty"`
	Basemap    string       `json:"basemap"`
	Pill       pill.Phase   `json:"pill"`
	PillRecord int          `json:"pill_record,omitempty"`
}

// Snapshot returns the current State.
func (a *App) Snapshot() State {
	s := State{
		SessionID: a.session,
		Started:   a.started,
		Records:   a.store.Len(),
		Filtered:  a.store.FilteredLen(),
		Query:     a.query,
		Counter:   a.query.Describe(a.store.FilteredLen()),
		Search:    a.search,
		Overlay:   a.overlay,
		Views:     a.result,
		Camera:    a.camera.State(),
		Target:    a.camera.Target(),
		Basemap:   a.basemaps.Active().ID,
		Pill:      a.pill.Phase(),
	}
	if r, ok := a.pill.Current(); ok {
		s.PillRecord = r.ID
	}
	return s
}
