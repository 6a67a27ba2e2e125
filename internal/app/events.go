package app

import "time"

// Event is one interaction, emitted for telemetry.
type Event struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	RecordID  int       `json:"record_id,omitempty"`
	Term      string    `json:"term,omitempty"`
	Basemap   string    `json:"basemap,omitempty"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// EventSink receives interaction events. Emit must not block.
type EventSink interface {
	Emit(e Event)
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

func eventFor(cmd Command) Event {
	e := Event{Kind: cmd.Kind()}
	switch c := cmd.(type) {
	case SetFilter:
		e.Term = c.Term
	case SetHashtag:
		e.Term = c.Tag
	case GoToRecord:
		e.RecordID = c.ID
	case SwitchBasemap:
		e.Basemap = c.ID
	}
	return e
}
