package transfer_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cleverpad/pkg/adapters/memory"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
	"github.com/aretw0/cleverpad/pkg/transfer"
)

type sinkFunc func(ctx context.Context, title, content string) (core.Note, error)

func (f sinkFunc) Insert(ctx context.Context, title, content string) (core.Note, error) {
	return f(ctx, title, content)
}

func guestSink() (*memory.Repository, transfer.Sink) {
	repo := memory.NewRepository()
	return repo, sinkFunc(repo.Create)
}

var exportTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = b
	}
	return out
}

func TestExport(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	notes := []core.Note{
		{ID: "1", Title: "Plan: Q3/Q4", Content: "<p>Hello <strong>world</strong></p>", CreatedAt: created},
		{ID: "2", Title: "plan q3 q4", Content: "<p>one two three</p>"},
		{ID: "3", Title: "", Content: ""},
	}

	var buf bytes.Buffer
	m, err := transfer.Export(&buf, notes, exportTime)
	require.NoError(t, err)

	assert.Equal(t, 3, m.NoteCount)
	assert.Equal(t, 5, m.TotalWords)
	require.Len(t, m.Notes, 3)
	assert.Equal(t, "notes/plan-q3-q4.md", m.Notes[0].Markdown)
	assert.Equal(t, "notes/plan-q3-q4-2.md", m.Notes[1].Markdown)
	assert.Equal(t, "notes/note-3.json", m.Notes[2].JSON)

	files := readZip(t, buf.Bytes())
	assert.Len(t, files, 7)

	md := string(files["notes/plan-q3-q4.md"])
	assert.True(t, strings.HasPrefix(md, "---\nid: \"1\"\n"))
	assert.Contains(t, md, "# Plan: Q3/Q4")
	assert.Contains(t, md, "**world**")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(files["notes/plan-q3-q4-2.json"], &rec))
	assert.Equal(t, "<p>one two three</p>", rec["content"])

	var manifest transfer.Manifest
	require.NoError(t, json.Unmarshal(files[transfer.ManifestName], &manifest))
	assert.Equal(t, 3, manifest.NoteCount)
	assert.True(t, manifest.ExportedAt.Equal(exportTime))
	require.NotNil(t, manifest.Notes[0].CreatedAt)
	assert.True(t, manifest.Notes[0].CreatedAt.Equal(created))
	assert.Nil(t, manifest.Notes[1].CreatedAt)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportWriteFailure(t *testing.T) {
	_, err := transfer.Export(failingWriter{}, []core.Note{{ID: "1", Title: "a"}}, exportTime)
	assert.ErrorContains(t, err, "disk full")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "hello-world", transfer.Slug("  Hello,   World!  ", "1"))
	assert.Equal(t, "café-notes", transfer.Slug("Café Notes", "1"))
	assert.Equal(t, "note-42", transfer.Slug("///", "42"))
	assert.Equal(t, "a-b", transfer.Slug("a/../b", "1"))
}

func TestMarkdownRoundTrip(t *testing.T) {
	n := core.Note{ID: "9", Title: "Weekly plan", Content: "<p>Ship the <em>draft</em> <strong>today</strong></p><ul><li>one</li><li>two</li></ul>"}
	doc, err := transfer.MarkdownDocument(n)
	require.NoError(t, err)

	title, content, err := transfer.Parse("weekly-plan.md", doc)
	require.NoError(t, err)
	assert.Equal(t, "Weekly plan", title)
	assert.Contains(t, content, "<em>draft</em>")
	assert.Contains(t, content, "<strong>today</strong>")

	text := markup.StripTags(content)
	assert.Contains(t, text, "Ship the draft today")
	assert.Contains(t, text, "one")
	assert.Contains(t, text, "two")
	assert.NotContains(t, text, "Weekly plan")
}

func TestParse(t *testing.T) {
	t.Run("markdown without heading uses file name", func(t *testing.T) {
		title, content, err := transfer.Parse("lists/groceries.md", []byte("- milk\n- eggs\n"))
		require.NoError(t, err)
		assert.Equal(t, "groceries", title)
		assert.Contains(t, content, "<li>milk</li>")
	})

	t.Run("frontmatter title", func(t *testing.T) {
		title, _, err := transfer.Parse("x.md", []byte("---\ntitle: From meta\n---\n\nbody\n"))
		require.NoError(t, err)
		assert.Equal(t, "From meta", title)
	})

	t.Run("heading beats frontmatter", func(t *testing.T) {
		title, content, err := transfer.Parse("x.md", []byte("---\ntitle: From meta\n---\n\n# From heading\n\nbody\n"))
		require.NoError(t, err)
		assert.Equal(t, "From heading", title)
		assert.Equal(t, "<p>body</p>", content)
	})

	t.Run("json record", func(t *testing.T) {
		title, content, err := transfer.Parse("n.json", []byte(`{"title":"Beta","content":"<p>x</p>"}`))
		require.NoError(t, err)
		assert.Equal(t, "Beta", title)
		assert.Equal(t, "<p>x</p>", content)
	})

	t.Run("json without title", func(t *testing.T) {
		title, _, err := transfer.Parse("beta.json", []byte(`{"content":"<p>x</p>"}`))
		require.NoError(t, err)
		assert.Equal(t, "beta", title)
	})

	t.Run("json without content", func(t *testing.T) {
		_, _, err := transfer.Parse("n.json", []byte(`{"title":"Beta"}`))
		assert.Error(t, err)
	})

	t.Run("empty markdown", func(t *testing.T) {
		_, _, err := transfer.Parse("empty.md", []byte("   \n"))
		assert.ErrorIs(t, err, core.ErrEmptyImport)
	})

	t.Run("empty json", func(t *testing.T) {
		_, _, err := transfer.Parse("empty.json", []byte(`{"title":"","content":"<p></p>"}`))
		assert.ErrorIs(t, err, core.ErrEmptyImport)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, _, err := transfer.Parse("notes.txt", []byte("hi"))
		assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	})
}

func TestImportIsolatesFailures(t *testing.T) {
	repo, sink := guestSink()
	files := []transfer.File{
		{Name: "a.md", Data: []byte("# Alpha\n\nbody\n")},
		{Name: "b.json", Data: []byte(`{"title":`)},
		{Name: "c.json", Data: []byte(`{"title":"Gamma","content":"<p>g</p>"}`)},
	}

	rep, err := transfer.Importer{}.Import(context.Background(), files, sink)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 1, rep.Failed)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "b.json", rep.Failures[0].Name)

	notes, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Gamma", notes[0].Title)
	assert.Equal(t, "Alpha", notes[1].Title)
}

func TestImportRejectsLargeBatch(t *testing.T) {
	calls := 0
	sink := sinkFunc(func(context.Context, string, string) (core.Note, error) {
		calls++
		return core.Note{}, nil
	})
	files := make([]transfer.File, 3)
	for i := range files {
		files[i] = transfer.File{Name: fmt.Sprintf("%d.md", i), Data: []byte("x")}
	}

	_, err := transfer.Importer{MaxFiles: 2}.Import(context.Background(), files, sink)
	assert.ErrorIs(t, err, core.ErrBatchTooLarge)
	assert.Zero(t, calls)

	many := make([]transfer.File, transfer.DefaultMaxFiles+1)
	_, err = transfer.Importer{}.Import(context.Background(), many, sink)
	assert.ErrorIs(t, err, core.ErrBatchTooLarge)
}

func TestImportCountsSinkFailures(t *testing.T) {
	boom := errors.New("backend down")
	sink := sinkFunc(func(context.Context, string, string) (core.Note, error) {
		return core.Note{}, boom
	})
	rep, err := transfer.Importer{}.Import(context.Background(), []transfer.File{{Name: "a.md", Data: []byte("a")}}, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.ErrorIs(t, rep.Failures[0], boom)
}

func TestCollectFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"b.md":             {Data: []byte("# B")},
		"a.json":           {Data: []byte(`{"content":"a"}`)},
		"nested/deep/c.md": {Data: []byte("# C")},
		"skip.txt":         {Data: []byte("nope")},
	}
	files, err := transfer.CollectFiles(fsys, "**/*.{md,json}")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a.json", "b.md", "nested/deep/c.md"}, names)
	assert.Equal(t, []byte("# B"), files[1].Data)
}

func TestExportPDF(t *testing.T) {
	var buf bytes.Buffer
	err := transfer.ExportPDF(&buf, core.Note{ID: "1", Title: "Résumé", Content: "<p>first</p><p>second</p>"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
