package view

import "slices"

// Memory is an in-memory sidebar, scroller and counter.
type Memory struct {
	sidebar  []Entry
	cards    []Entry
	selected int
	counter  string
	renders  int
}

// NewMemory returns empty views.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RenderSidebar(entries []Entry) {
	m.sidebar = slices.Clone(entries)
	m.renders++
}

func (m *Memory) RenderScroller(cards []Entry) {
	m.cards = slices.Clone(cards)
	m.selected = 0
}

func (m *Memory) HighlightCard(id int) bool {
	for _, c := range m.cards {
		if c.ID == id {
			m.selected = id
			return true
		}
	}
	m.selected = 0
	return false
}

func (m *Memory) RenderCounter(text string) {
	m.counter = text
}

// Snapshot is the rendered state of the list views.
type Snapshot struct {
	Sidebar  []Entry `json:"sidebar"`
	Scroller []Entry `json:"scroller"`
	Selected int     `json:"selected,omitempty"`
	Counter  string  `json:"counter"`
	Renders  int     `json:"renders"`
}

// Snapshot copies the current rendered state.
func (m *Memory) Snapshot() Snapshot {
	return Snapshot{
		Sidebar:  slices.Clone(m.sidebar),
		Scroller: slices.Clone(m.cards),
		Selected: m.selected,
		Counter:  m.counter,
		Renders:  m.renders,
	}
}
