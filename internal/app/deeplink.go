package app

import (
	"net/url"
	"strings"

	"github.com/couchcryptid/memory-map/internal/filter"
)

// DeepLink is the filter requested by the page query string.
type DeepLink struct {
	Query filter.Query
	// Term is the value as the visitor wrote it, for the overlay text.
	Term string
}

// ParseDeepLink reads the s and hashtag parameters from a query string or a
// full URL. hashtag wins when both are present. Pairs that fail to decode
// are skipped and the rest still apply.
func ParseDeepLink(raw string) DeepLink {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	// ParseQuery keeps every pair it could decode alongside the error.
	values, _ := url.ParseQuery(raw)

	if tag := strings.TrimSpace(values.Get("hashtag")); tag != "" {
		if q := filter.Hashtag(tag); !q.IsAll() {
			return DeepLink{Query: q, Term: tag}
		}
	}
	if term := values.Get("s"); strings.TrimSpace(term) != "" {
		return DeepLink{Query: filter.Text(term), Term: term}
	}
	return DeepLink{Query: filter.All()}
}
