package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Table, extension.Linkify),
	// Underline survives export as inline <u>; let it back in.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// FromMarkdown renders Markdown to an HTML fragment.
func FromMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// SplitTitle renders Markdown and lifts a leading level-1 heading out as the
// title. title is "" when the document does not start with "# ...".
func SplitTitle(src string) (title, fragment string, err error) {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))

	if h, ok := doc.FirstChild().(*ast.Heading); ok && h.Level == 1 {
		title = strings.TrimSpace(plainText(h, source))
		doc.RemoveChild(doc, h)
	}

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		return "", "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return title, strings.TrimSpace(buf.String()), nil
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
