package view_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/view"
)

func sample() []core.Note {
	return []core.Note{
		{ID: "3", Title: "Groceries", Content: "<p>milk and <b>eggs</b></p>"},
		{ID: "2", Title: "Work", Content: "<p>Quarterly <em>report</em></p>"},
		{ID: "1", Title: "Ideas", Content: "<p>A <strong>bold</strong> plan</p>"},
	}
}

func ids(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"3", "2", "1"}},
		{"work", []string{"2"}},
		{"EGGS", []string{"3"}},
		{"report", []string{"2"}},
		{"bold plan", []string{"1"}},
		{"strong", nil},
		{"<p>", nil},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("q=%q", tt.query), func(t *testing.T) {
			got := view.Filter(sample(), tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	notes := sample()
	got := view.Filter(notes, "")
	got[0].Title = "changed"
	assert.Equal(t, "Groceries", notes[0].Title)
}

func noteGen() *rapid.Generator[core.Note] {
	return rapid.Custom(func(t *rapid.T) core.Note {
		return core.Note{
			ID:    rapid.StringMatching(`[a-z0-9]{6}`).Draw(t, "id"),
			Title: rapid.StringMatching(`[A-Za-z ]{0,20}`).Draw(t, "title"),
			Content: rapid.OneOf(
				rapid.Just(""),
				rapid.StringMatching(`<p>[A-Za-z ]{0,40}</p>`),
			).Draw(t, "content"),
		}
	})
}

func TestFilterProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		notes := rapid.SliceOf(noteGen()).Draw(t, "notes")
		query := rapid.StringMatching(`[A-Za-z]{0,3}`).Draw(t, "query")

		got := view.Filter(notes, query)

		if query == "" && len(got) != len(notes) {
			t.Fatalf("empty query dropped notes: %d of %d", len(got), len(notes))
		}

		// Result is an order-preserving subsequence of the input.
		j := 0
		for _, n := range got {
			for j < len(notes) && notes[j] != n {
				j++
			}
			if j == len(notes) {
				t.Fatalf("result is not a subsequence of the input")
			}
			j++
		}

		// Every result matches; every non-result does not.
		q := strings.ToLower(query)
		matched := 0
		for _, n := range notes {
			if view.Matches(n, q) {
				matched++
			}
		}
		if matched != len(got) {
			t.Fatalf("filter returned %d notes, %d match", len(got), matched)
		}
	})
}
