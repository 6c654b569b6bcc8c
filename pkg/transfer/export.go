// Package transfer moves notes across the system boundary: zip archive and
// single-note exports, and batch imports of Markdown and JSON files.
package transfer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
	"github.com/aretw0/cleverpad/pkg/view"
)

// ManifestName is the archive entry describing the export.
const ManifestName = "manifest.json"

// Manifest summarizes an exported archive.
type Manifest struct {
	ExportedAt time.Time       `json:"exported_at"`
	NoteCount  int             `json:"note_count"`
	TotalWords int             `json:"total_words"`
	Notes      []ManifestEntry `json:"notes"`
}

// ManifestEntry describes one exported note.
type ManifestEntry struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Words     int        `json:"words"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Markdown  string     `json:"markdown"`
	JSON      string     `json:"json"`
}

// frontmatter is the YAML header of exported Markdown files.
type frontmatter struct {
	ID        string     `yaml:"id"`
	Title     string     `yaml:"title"`
	CreatedAt *time.Time `yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `yaml:"updated_at,omitempty"`
}

// Export writes every note as Markdown and JSON plus a manifest into a zip
// archive. The archive is assembled in memory; nothing reaches w unless the
// whole export succeeded.
func Export(w io.Writer, notes []core.Note, now time.Time) (Manifest, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest := Manifest{ExportedAt: now, NoteCount: len(notes), Notes: make([]ManifestEntry, 0, len(notes))}
	names := newNamer()

	for _, n := range notes {
		base := names.unique(Slug(n.Title, n.ID))
		entry := ManifestEntry{
			ID:        n.ID,
			Title:     n.Title,
			Words:     view.WordCount(n.Content),
			CreatedAt: timePtr(n.CreatedAt),
			UpdatedAt: timePtr(n.UpdatedAt),
			Markdown:  path.Join("notes", base+".md"),
			JSON:      path.Join("notes", base+".json"),
		}
		manifest.TotalWords += entry.Words

		md, err := MarkdownDocument(n)
		if err != nil {
			return Manifest{}, err
		}
		if err := writeEntry(zw, entry.Markdown, md, now); err != nil {
			return Manifest{}, err
		}

		js, err := JSONDocument(n)
		if err != nil {
			return Manifest{}, err
		}
		if err := writeEntry(zw, entry.JSON, js, now); err != nil {
			return Manifest{}, err
		}
		manifest.Notes = append(manifest.Notes, entry)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := writeEntry(zw, ManifestName, data, now); err != nil {
		return Manifest{}, err
	}
	if err := zw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("failed to finish archive: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return Manifest{}, fmt.Errorf("failed to write archive: %w", err)
	}
	return manifest, nil
}

// MarkdownDocument renders a note as Markdown with a YAML frontmatter and a
// leading "# Title" line, which Import reads back as the title.
func MarkdownDocument(n core.Note) ([]byte, error) {
	fm, err := yaml.Marshal(frontmatter{
		ID:        n.ID,
		Title:     n.Title,
		CreatedAt: timePtr(n.CreatedAt),
		UpdatedAt: timePtr(n.UpdatedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	if n.Title != "" {
		b.WriteString("# " + n.Title + "\n\n")
	}
	if body := strings.TrimSpace(markup.ToMarkdown(n.Content)); body != "" {
		b.WriteString(body + "\n")
	}
	return b.Bytes(), nil
}

// jsonRecord is the structured note record used by export and import.
type jsonRecord struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// JSONDocument renders a note as a JSON record.
func JSONDocument(n core.Note) ([]byte, error) {
	data, err := json.MarshalIndent(jsonRecord{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: timePtr(n.CreatedAt),
		UpdatedAt: timePtr(n.UpdatedAt),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode note %s: %w", n.ID, err)
	}
	return append(data, '\n'), nil
}

func writeEntry(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Slug turns a title into a portable file name, falling back to fallback
// (typically the note id) when nothing usable remains.
func Slug(title, fallback string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if len(s) > 80 {
		s = strings.Trim(s[:80], "-")
	}
	if s == "" {
		s = "note-" + fallback
	}
	return s
}

type namer map[string]int

func newNamer() namer { return namer{} }

// unique appends -2, -3... to names already handed out.
func (n namer) unique(base string) string {
	n[base]++
	if c := n[base]; c > 1 {
		return fmt.Sprintf("%s-%d", base, c)
	}
	return base
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
