package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
)

// DefaultMaxFiles bounds one import batch.
const DefaultMaxFiles = 20

// File is one candidate for import.
type File struct {
	Name string
	Data []byte
}

// Sink receives parsed notes. *core.Service satisfies it.
type Sink interface {
	Insert(ctx context.Context, title, content string) (core.Note, error)
}

// Failure records why a file was not imported.
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Report summarizes an import batch.
type Report struct {
	Succeeded int
	Failed    int
	Imported  []core.Note
	Failures  []Failure
}

// Importer parses Markdown and JSON files into notes.
type Importer struct {
	MaxFiles int
	Logger   *zap.Logger
}

// Import validates the batch size, then parses and stores every file. A bad
// file is recorded in the report and never stops the rest of the batch.
func (im Importer) Import(ctx context.Context, files []File, sink Sink) (Report, error) {
	limit := im.MaxFiles
	if limit <= 0 {
		limit = DefaultMaxFiles
	}
	if len(files) > limit {
		return Report{}, fmt.Errorf("%w: %d files, limit is %d", core.ErrBatchTooLarge, len(files), limit)
	}
	logger := im.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var rep Report
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		n, err := im.importOne(ctx, f, sink)
		if err != nil {
			logger.Warn("import failed", zap.String("file", f.Name), zap.Error(err))
			rep.Failed++
			rep.Failures = append(rep.Failures, Failure{Name: f.Name, Err: err})
			continue
		}
		rep.Succeeded++
		rep.Imported = append(rep.Imported, n)
	}
	return rep, nil
}

func (im Importer) importOne(ctx context.Context, f File, sink Sink) (core.Note, error) {
	title, content, err := Parse(f.Name, f.Data)
	if err != nil {
		return core.Note{}, err
	}
	n, err := sink.Insert(ctx, title, content)
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to store note: %w", err)
	}
	return n, nil
}

// Parse turns a file into a title and an HTML content fragment. The title
// defaults to the file name without its extension.
func Parse(name string, data []byte) (title, content string, err error) {
	ext := strings.ToLower(path.Ext(name))
	var explicit string
	switch ext {
	case ".md", ".markdown":
		explicit, content, err = parseMarkdown(data)
	case ".json":
		explicit, content, err = parseJSON(data)
	default:
		return "", "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", "", err
	}
	if explicit == "" && strings.TrimSpace(markup.StripTags(content)) == "" {
		return "", "", core.ErrEmptyImport
	}
	title = explicit
	if title == "" {
		title = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	return title, content, nil
}

func parseMarkdown(data []byte) (title, content string, err error) {
	meta, body, err := splitFrontmatter(data)
	if err != nil {
		return "", "", err
	}
	title, content, err = markup.SplitTitle(string(body))
	if err != nil {
		return "", "", err
	}
	if title == "" {
		title = meta.Title
	}
	return strings.TrimSpace(title), content, nil
}

func splitFrontmatter(data []byte) (frontmatter, []byte, error) {
	var meta frontmatter
	text := bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(text, []byte("---\n")) && !bytes.HasPrefix(text, []byte("---\r\n")) {
		return meta, text, nil
	}
	rest := text[bytes.IndexByte(text, '\n')+1:]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, text, nil
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return meta, body, nil
}

func parseJSON(data []byte) (title, content string, err error) {
	var rec struct {
		Title   string  `json:"title"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", "", fmt.Errorf("failed to parse note record: %w", err)
	}
	if rec.Content == nil {
		return "", "", fmt.Errorf("failed to parse note record: missing content")
	}
	return strings.TrimSpace(rec.Title), *rec.Content, nil
}

// CollectFiles reads every file in fsys matching a doublestar pattern, such
// as "**/*.{md,json}", in lexical order.
func CollectFiles(fsys fs.FS, pattern string) ([]File, error) {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to match %q: %w", pattern, err)
	}
	slices.Sort(matches)
	files := make([]File, 0, len(matches))
	for _, m := range matches {
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", m, err)
		}
		files = append(files, File{Name: m, Data: data})
	}
	return files, nil
}
