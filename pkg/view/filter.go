// Package view holds pure projections over the notes collection: search
// filtering and statistics.
package view

import (
	"strings"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
)

// Filter returns the notes whose title or markup-stripped content contains
// query, ignoring case. An empty query returns every note. Order is kept and
// the input is never modified.
func Filter(notes []core.Note, query string) []core.Note {
	out := make([]core.Note, 0, len(notes))
	if query == "" {
		return append(out, notes...)
	}

	q := strings.ToLower(query)
	for _, n := range notes {
		if Matches(n, q) {
			out = append(out, n)
		}
	}
	return out
}

// Matches reports whether n matches an already lower-cased query.
func Matches(n core.Note, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(n.Title), lowerQuery) {
		return true
	}
	return strings.Contains(strings.ToLower(markup.StripTags(n.Content)), lowerQuery)
}
