// Package camera drives fly-to navigation, the idle rotation that follows
// an arrival, and bounds fitting.
//
// States are Idle, Flying and Rotating. A fly-to disables user gestures
// until it arrives or is aborted, and every exit path re-enables them.
package camera

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/mapengine"
	"github.com/couchcryptid/memory-map/internal/observability"
)

var (
	// ErrFlightInProgress is returned when a fly-to is requested mid-flight.
	ErrFlightInProgress = errors.New("flight in progress")

	// ErrUnknownRecord is returned for an id with no canonical record.
	ErrUnknownRecord = errors.New("unknown record")

	// ErrNoMarker is returned when the record has no placed marker.
	ErrNoMarker = errors.New("no marker for record")
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Flying
	Rotating
)

func (s State) String() string {
	switch s {
	case Flying:
		return "flying"
	case Rotating:
		return "rotating"
	default:
		return "idle"
	}
}

// MarshalText renders the state name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RecordLookup finds canonical records by id.
type RecordLookup interface {
	Lookup(id int) (domain.Record, bool)
}

// Highlighter marks the selected card in the list views.
type Highlighter interface {
	Highlight(id int) bool
}

// Options configures navigation.
type Options struct {
	Zoom        float64
	Speed       float64
	OffsetRatio float64
	DegPerSec   float64

	FitBounds  bool
	FitPadding float64
	FitMaxZoom float64
}

// DefaultOptions match the original map behavior.
func DefaultOptions() Options {
	return Options{
		Zoom:        16,
		Speed:       0.5,
		OffsetRatio: 0.25,
		DegPerSec:   6,
		FitPadding:  100,
		FitMaxZoom:  17,
	}
}

// Controller is the camera state machine. It is owned by one goroutine.
type Controller struct {
	engine      mapengine.Map
	records     RecordLookup
	highlighter Highlighter
	opts        Options
	logger      *slog.Logger
	metrics     *observability.Metrics

	state   State
	target  int
	rotated float64
}

// New creates an idle controller.
func New(engine mapengine.Map, records RecordLookup, highlighter Highlighter, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Controller {
	return &Controller{
		engine:      engine,
		records:     records,
		highlighter: highlighter,
		opts:        opts,
		logger:      logger,
		metrics:     metrics,
	}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Target is the id of the last record flown to, or 0.
func (c *Controller) Target() int { return c.target }

// GoTo flies to the record's marker. A request while Flying is rejected
// without touching the current flight. A request while Rotating stops the
// rotation first.
func (c *Controller) GoTo(id int) error {
	if c.state == Flying {
		c.metrics.FlyTo.WithLabelValues("blocked").Inc()
		c.logger.Debug("fly-to blocked", "record_id", id, "current", c.target)
		return fmt.Errorf("go to %d: %w", id, ErrFlightInProgress)
	}
	if c.state == Rotating {
		c.stopRotation()
	}

	c.highlighter.Highlight(id)

	rec, ok := c.records.Lookup(id)
	if !ok {
		c.rollback()
		c.metrics.FlyTo.WithLabelValues("unknown_record").Inc()
		c.logger.Warn("fly-to lookup failed", "record_id", id, "error", ErrUnknownRecord)
		return fmt.Errorf("go to %d: %w", id, ErrUnknownRecord)
	}
	if !c.engine.HasMarker(id) {
		c.rollback()
		c.metrics.FlyTo.WithLabelValues("no_marker").Inc()
		c.logger.Warn("fly-to lookup failed", "record_id", id, "error", ErrNoMarker)
		return fmt.Errorf("go to %d: %w", id, ErrNoMarker)
	}

	c.state = Flying
	c.target = id
	c.engine.SetInteractive(false)
	c.metrics.FlyTo.WithLabelValues("started").Inc()
	c.logger.Debug("flying to record", "record_id", id, "position", rec.Position.String())

	c.engine.FlyTo(mapengine.FlyToOptions{
		Center: rec.Position,
		Zoom:   c.opts.Zoom,
		Speed:  c.opts.Speed,
		Offset: [2]float64{0, c.opts.OffsetRatio * c.engine.ViewportHeight()},
	}, func() { c.arrive(id) })
	return nil
}

func (c *Controller) arrive(id int) {
	if c.state != Flying || c.target != id {
		return
	}
	c.engine.SetInteractive(true)
	if !c.engine.OpenPopup(id) {
		c.logger.Debug("marker gone on arrival", "record_id", id)
	}
	c.state = Idle
	c.metrics.FlyTo.WithLabelValues("arrived").Inc()
	c.startRotation()
}

func (c *Controller) rollback() {
	c.state = Idle
	c.engine.SetInteractive(true)
}

func (c *Controller) startRotation() {
	if c.opts.DegPerSec <= 0 {
		return
	}
	c.state = Rotating
	c.rotated = 0
	c.metrics.RotationsStarted.Inc()
}

func (c *Controller) stopRotation() {
	c.state = Idle
	c.rotated = 0
}

// Interrupt handles a manual pan or zoom. It aborts a flight without the
// arrival side effects and cancels rotation.
func (c *Controller) Interrupt() {
	switch c.state {
	case Flying:
		c.engine.Stop()
		c.rollback()
		c.metrics.FlyTo.WithLabelValues("aborted").Inc()
		c.logger.Debug("flight aborted by user gesture", "record_id", c.target)
	case Rotating:
		c.stopRotation()
	}
}

// Click handles a click on the map. It cancels rotation.
func (c *Controller) Click() {
	if c.state == Rotating {
		c.stopRotation()
	}
}

// Tick advances rotation by dt. Rotation ends after one full turn.
func (c *Controller) Tick(dt time.Duration) {
	if c.state != Rotating || dt <= 0 {
		return
	}
	step := c.opts.DegPerSec * dt.Seconds()
	if remaining := 360 - c.rotated; step >= remaining {
		c.engine.SetBearing(c.engine.Bearing() + remaining)
		c.stopRotation()
		return
	}
	c.engine.SetBearing(c.engine.Bearing() + step)
	c.rotated += step
}

// FitBounds computes the extent of the placement-valid records and applies
// it when bounds fitting is enabled and the welcome overlay is closed. It
// returns the computed extent and whether it was applied.
func (c *Controller) FitBounds(records []domain.Record, overlayOpen bool) (mapengine.Bounds, bool) {
	b, ok := Extent(records)
	if !ok || overlayOpen || !c.opts.FitBounds {
		return b, false
	}
	c.engine.FitBounds(b, mapengine.FitOptions{Padding: c.opts.FitPadding, MaxZoom: c.opts.FitMaxZoom})
	return b, true
}
