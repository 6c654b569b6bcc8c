package view_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/view"
)

func TestStatsFor(t *testing.T) {
	s := view.StatsFor(core.Note{Content: "<p>one two three</p><p>four</p>"})
	assert.Equal(t, 4, s.Words)
	assert.Equal(t, 2, s.Paragraphs)
	assert.Equal(t, 1, s.ReadingMinutes)
	assert.Equal(t, len("one two three\n\nfour"), s.Characters)

	empty := view.StatsFor(core.Note{})
	assert.Equal(t, view.NoteStats{}, empty)
}

func TestReadingTimeRoundsUp(t *testing.T) {
	words := make([]byte, 0, 402)
	for i := 0; i < 201; i++ {
		words = append(words, 'w', ' ')
	}
	s := view.StatsFor(core.Note{Content: string(words)})
	assert.Equal(t, 201, s.Words)
	assert.Equal(t, 2, s.ReadingMinutes)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	notes := []core.Note{
		{ID: "a", Title: "today", Content: "<p>one two</p>", CreatedAt: now.Add(-time.Hour)},
		{ID: "b", Title: "yesterday", Content: "<p>one two three four</p>", CreatedAt: now.Add(-20 * time.Hour)},
		{ID: "c", Title: "old", Content: "", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		{ID: "d", Title: "undated", Content: "<p>x</p>"},
	}

	o := view.Summarize(notes, "", now)
	assert.Equal(t, 4, o.TotalNotes)
	assert.Equal(t, 7, o.TotalWords)
	assert.Equal(t, 3, o.ThisWeek, "undated notes count as now")
	assert.Equal(t, 2, o.Today)
	assert.Equal(t, 2, o.AverageWords)
	assert.Equal(t, 1, o.ReadingMinutes)
	require.NotNil(t, o.Longest)
	assert.Equal(t, "b", o.Longest.ID)
	assert.Nil(t, o.SearchResults)

	o = view.Summarize(notes, "ONE", now)
	require.NotNil(t, o.SearchResults)
	assert.Equal(t, 2, *o.SearchResults)
}

func TestSummarizeEmpty(t *testing.T) {
	o := view.Summarize(nil, "", time.Now())
	assert.Equal(t, view.Overview{}, o)
}
