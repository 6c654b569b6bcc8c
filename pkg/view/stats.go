package view

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

var paragraphSep = regexp.MustCompile(`\n\s*\n`)

// NoteStats describes a single note.
type NoteStats struct {
	Words          int `json:"words"`
	Characters     int `json:"characters"`
	Paragraphs     int `json:"paragraphs"`
	ReadingMinutes int `json:"reading_minutes"`
}

// LongestNote names the note with the most words.
type LongestNote struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Words int    `json:"words"`
}

// Overview summarizes the whole collection.
type Overview struct {
	TotalNotes      int          `json:"total_notes"`
	TotalWords      int          `json:"total_words"`
	TotalCharacters int          `json:"total_characters"`
	ThisWeek        int          `json:"this_week"`
	Today           int          `json:"today"`
	AverageWords    int          `json:"average_words"`
	ReadingMinutes  int          `json:"reading_minutes"`
	Longest         *LongestNote `json:"longest,omitempty"`
	// SearchResults is set only when a query was given.
	SearchResults *int `json:"search_results,omitempty"`
}

// WordCount counts whitespace separated words of an HTML fragment.
func WordCount(content string) int {
	return len(strings.Fields(markup.StripTags(content)))
}

// StatsFor computes the statistics of one note.
func StatsFor(n core.Note) NoteStats {
	text := markup.StripTags(n.Content)
	words := len(strings.Fields(text))

	paragraphs := 0
	for _, p := range paragraphSep.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}

	return NoteStats{
		Words:          words,
		Characters:     utf8.RuneCountInString(text),
		Paragraphs:     paragraphs,
		ReadingMinutes: readingMinutes(words),
	}
}

// Summarize computes collection statistics as of now. A note counts for
// "this week" and "today" by its creation time, falling back to its update
// time and then to now.
func Summarize(notes []core.Note, query string, now time.Time) Overview {
	o := Overview{TotalNotes: len(notes)}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	for _, n := range notes {
		s := StatsFor(n)
		o.TotalWords += s.Words
		o.TotalCharacters += s.Characters

		if s.Words > 0 && (o.Longest == nil || s.Words > o.Longest.Words) {
			o.Longest = &LongestNote{ID: n.ID, Title: n.Title, Words: s.Words}
		}

		at := noteTime(n, now)
		if !at.Before(weekAgo) {
			o.ThisWeek++
		}
		if !at.Before(today) && at.Before(tomorrow) {
			o.Today++
		}
	}

	if o.TotalNotes > 0 {
		o.AverageWords = int(math.Round(float64(o.TotalWords) / float64(o.TotalNotes)))
	}
	o.ReadingMinutes = readingMinutes(o.TotalWords)

	if query != "" {
		count := len(Filter(notes, query))
		o.SearchResults = &count
	}
	return o
}

func noteTime(n core.Note, now time.Time) time.Time {
	switch {
	case !n.CreatedAt.IsZero():
		return n.CreatedAt
	case !n.UpdatedAt.IsZero():
		return n.UpdatedAt
	default:
		return now
	}
}

func readingMinutes(words int) int {
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
