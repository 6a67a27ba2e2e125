// Package pill cycles a "memory pill": a random record summary that fades
// in, holds, fades out, and is replaced after a gap.
package pill

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/observability"
)

// Phase is where the cycle is.
type Phase string

const (
	Stopped   Phase = "stopped"
	Waiting   Phase = "waiting"
	FadingIn  Phase = "fading_in"
	Holding   Phase = "holding"
	FadingOut Phase = "fading_out"
)

// Timing is the length of each part of the cycle. Dwell precedes the first
// pick; Gap precedes every later one.
type Timing struct {
	Dwell time.Duration
	Fade  time.Duration
	Hold  time.Duration
	Gap   time.Duration
}

// DefaultTiming is the cycle used when nothing is configured.
func DefaultTiming() Timing {
	return Timing{Dwell: 3 * time.Second, Fade: time.Second, Hold: 6 * time.Second, Gap: 4 * time.Second}
}

// Records supplies the canonical record set.
type Records interface {
	All() []domain.Record
}

// Display renders the pill.
type Display interface {
	// ShowPill sets the pill content and starts the fade-in.
	ShowPill(r domain.Record)
	FadeOutPill()
	HidePill()
}

// Scheduler runs the pill cycle. Deadlines are checked on Tick against the
// injected clock. It is owned by one goroutine.
type Scheduler struct {
	clock   clockwork.Clock
	records Records
	display Display
	rng     *rand.Rand
	timing  Timing
	logger  *slog.Logger
	metrics *observability.Metrics

	phase Phase
	// deadline drives the display cycle; fadeDeadline ends a fade.
	deadline     time.Time
	fadeDeadline time.Time

	current    domain.Record
	hasCurrent bool
	lastID     int
}

// New creates a stopped scheduler.
func New(clock clockwork.Clock, records Records, display Display, rng *rand.Rand, timing Timing, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	return &Scheduler{
		clock:   clock,
		records: records,
		display: display,
		rng:     rng,
		timing:  timing,
		logger:  logger,
		metrics: metrics,
		phase:   Stopped,
	}
}

// Phase returns the current phase.
func (s *Scheduler) Phase() Phase { return s.phase }

// Start begins the cycle with the initial dwell. It is a no-op when running.
func (s *Scheduler) Start() {
	if s.phase != Stopped {
		return
	}
	s.phase = Waiting
	s.deadline = s.clock.Now().Add(s.timing.Dwell)
}

// Stop cancels both the display and the fade deadline and hides the pill.
// Calling it when already stopped does nothing.
func (s *Scheduler) Stop() {
	if s.phase == Stopped {
		return
	}
	s.phase = Stopped
	s.deadline = time.Time{}
	s.fadeDeadline = time.Time{}
	if s.hasCurrent {
		s.display.HidePill()
		s.hasCurrent = false
	}
}

// Current returns the displayed record, if any.
func (s *Scheduler) Current() (domain.Record, bool) {
	return s.current, s.hasCurrent
}

// Click returns the id of the displayed record.
func (s *Scheduler) Click() (int, bool) {
	if !s.hasCurrent {
		return 0, false
	}
	return s.current.ID, true
}

// maxSteps bounds the transitions one Tick may make: one full cycle.
const maxSteps = 4

// Tick fires every deadline that has passed.
func (s *Scheduler) Tick() {
	now := s.clock.Now()
	for i := 0; i < maxSteps && s.step(now); i++ {
	}
}

// step performs at most one transition.
func (s *Scheduler) step(now time.Time) bool {
	switch s.phase {
	case Waiting:
		if now.Before(s.deadline) {
			return false
		}
		rec, ok := s.pick()
		if !ok {
			s.deadline = now.Add(s.timing.Gap)
			return false
		}
		s.current, s.hasCurrent, s.lastID = rec, true, rec.ID
		s.display.ShowPill(rec)
		s.metrics.PillsShown.Inc()
		s.logger.Debug("pill shown", "record_id", rec.ID)
		s.phase = FadingIn
		s.deadline = time.Time{}
		s.fadeDeadline = now.Add(s.timing.Fade)
	case FadingIn:
		if now.Before(s.fadeDeadline) {
			return false
		}
		s.phase = Holding
		s.fadeDeadline = time.Time{}
		s.deadline = now.Add(s.timing.Hold)
	case Holding:
		if now.Before(s.deadline) {
			return false
		}
		s.display.FadeOutPill()
		s.phase = FadingOut
		s.deadline = time.Time{}
		s.fadeDeadline = now.Add(s.timing.Fade)
	case FadingOut:
		if now.Before(s.fadeDeadline) {
			return false
		}
		s.display.HidePill()
		s.hasCurrent = false
		s.phase = Waiting
		s.fadeDeadline = time.Time{}
		s.deadline = now.Add(s.timing.Gap)
	default:
		return false
	}
	return true
}

// Candidates returns the records eligible for the pill: those with both a
// title and a description.
func Candidates(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if r.Title != "" && r.Description != "" {
			out = append(out, r)
		}
	}
	return out
}

// pick draws uniformly from the candidates, excluding the previous pick
// when more than one candidate exists.
func (s *Scheduler) pick() (domain.Record, bool) {
	candidates := Candidates(s.records.All())
	if len(candidates) == 0 {
		return domain.Record{}, false
	}
	if len(candidates) > 1 && s.lastID != 0 {
		filtered := candidates[:0]
		for _, r := range candidates {
			if r.ID != s.lastID {
				filtered = append(filtered, r)
			}
		}
		candidates = filtered
	}
	return candidates[s.rng.IntN(len(candidates))], true
}
