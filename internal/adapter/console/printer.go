package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/memory-map/internal/domain"
	"github.com/couchcryptid/memory-map/internal/view"
)

// Printer renders the sidebar, scroller, counter and memory pill as text
// lines. It keeps the rendered state in a view.Memory for snapshots.
type Printer struct {
	out     io.Writer
	mem     *view.Memory
	verbose bool
}

// NewPrinter creates a printer writing to out. With verbose unset only the
// counter and pill are printed.
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, mem: view.NewMemory(), verbose: verbose}
}

// Memory exposes the rendered state.
func (p *Printer) Memory() *view.Memory { return p.mem }

func (p *Printer) RenderSidebar(entries []view.Entry) {
	p.mem.RenderSidebar(entries)
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.out, "sidebar: %s\n", joinEntries(entries))
}

func (p *Printer) RenderScroller(cards []view.Entry) {
	p.mem.RenderScroller(cards)
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.out, "cards: %s\n", joinEntries(cards))
}

func (p *Printer) HighlightCard(id int) bool {
	ok := p.mem.HighlightCard(id)
	if ok {
		fmt.Fprintf(p.out, "selected #%d\n", id)
	}
	return ok
}

func (p *Printer) RenderCounter(text string) {
	p.mem.RenderCounter(text)
	fmt.Fprintln(p.out, text)
}

func (p *Printer) ShowPill(r domain.Record) {
	fmt.Fprintf(p.out, "[pill] #%d %s: %s\n", r.ID, r.Title, r.Description)
}

func (p *Printer) FadeOutPill() {}

func (p *Printer) HidePill() {
	if p.verbose {
		fmt.Fprintln(p.out, "[pill] hidden")
	}
}

func joinEntries(entries []view.Entry) string {
	if len(entries) == 0 {
		return "(none)"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("#%d %s", e.ID, e.Author)
	}
	return strings.Join(parts, ", ")
}
