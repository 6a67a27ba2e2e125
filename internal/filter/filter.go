// Package filter derives the filtered subset of records from a search
// predicate. Filtering never mutates its input.
package filter

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/memory-map/internal/domain"
)

// Mode selects the predicate.
type Mode string

const (
	ModeAll     Mode = "all"
	ModeText    Mode = "text"
	ModeHashtag Mode = "hashtag"
)

// hashtagMarkers are the leading characters that mark a hashtag token.
var hashtagMarkers = []string{"#", "＃"}

// Query is one predicate. The zero value matches everything.
type Query struct {
	Mode Mode   `json:"mode"`
	Term string `json:"term,omitempty"`
}

// All returns the match-everything query.
func All() Query { return Query{Mode: ModeAll} }

// Text returns a free-text query. A blank term clears the filter.
func Text(term string) Query {
	if strings.TrimSpace(term) == "" {
		return All()
	}
	return Query{Mode: ModeText, Term: term}
}

// Hashtag returns an exact-tag query. The tag may carry a leading marker.
// A blank tag clears the filter.
func Hashtag(tag string) Query {
	t := stripMarker(strings.TrimSpace(tag))
	if t == "" {
		return All()
	}
	return Query{Mode: ModeHashtag, Term: t}
}

// IsAll reports whether q matches every record.
func (q Query) IsAll() bool {
	return q.Mode == "" || q.Mode == ModeAll
}

// Match reports whether r satisfies q.
func (q Query) Match(r domain.Record) bool {
	switch q.Mode {
	case ModeText:
		return matchText(r, strings.ToLower(q.Term))
	case ModeHashtag:
		return matchHashtag(r, q.Term)
	default:
		return true
	}
}

func matchText(r domain.Record, term string) bool {
	for _, field := range []string{r.Author, r.Title, r.Description, r.HashtagText, r.GenreText} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// stripMarker removes one leading '#' or '＃'.
func stripMarker(tag string) string {
	for _, m := range hashtagMarkers {
		if rest, ok := strings.CutPrefix(tag, m); ok {
			return rest
		}
	}
	return tag
}

func matchHashtag(r domain.Record, tag string) bool {
	for _, tok := range r.Hashtags() {
		if strings.EqualFold(stripMarker(tok), tag) {
			return true
		}
	}
	return false
}

// Apply returns the records matching q in source order. The result is
// always a new slice.
func Apply(records []domain.Record, q Query) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Describe renders the results counter text for n matching records.
func (q Query) Describe(n int) string {
	noun := "memories"
	if n == 1 {
		noun = "memory"
	}
	switch q.Mode {
	case ModeText:
		return fmt.Sprintf("%d %s matching %q", n, noun, q.Term)
	case ModeHashtag:
		return fmt.Sprintf("%d %s tagged #%s", n, noun, q.Term)
	default:
		return fmt.Sprintf("%d %s", n, noun)
	}
}
