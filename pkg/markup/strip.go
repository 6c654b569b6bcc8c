// Package markup converts the editor's HTML fragments to plain text and
// Markdown, and Markdown back to HTML.
package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags end a line of text when they open or close.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true, "tr": true, "table": true,
}

// paragraphTags separate paragraphs with a blank line.
var paragraphTags = map[string]bool{
	"p": true, "div": true, "blockquote": true, "pre": true, "ul": true, "ol": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripTags returns the text of an HTML fragment with entities decoded.
// Block elements become line breaks and paragraphs are separated by a blank
// line, so word and paragraph counts stay meaningful.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a malformed tail; keep what was read.
			return strings.TrimSpace(collapseBreaks(b.String()))
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tt == html.EndTagToken && (tag == "li" || tag == "br") {
				continue
			}
			switch {
			case paragraphTags[tag]:
				b.WriteString("\n\n")
			case blockTags[tag]:
				b.WriteString("\n")
			}
		}
	}
}

// collapseBreaks limits runs of newlines to one blank line.
func collapseBreaks(s string) string {
	var b strings.Builder
	newlines := 0
	for _, r := range s {
		if r == '\n' {
			newlines++
			if newlines > 2 {
				continue
			}
		} else if r != ' ' && r != '\t' {
			newlines = 0
		}
		b.WriteRune(r)
	}
	return b.String()
}
