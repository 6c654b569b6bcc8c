package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// inlineMarks is the one-directional tag table for inline formatting.
// Underline has no Markdown form and is kept as inline HTML.
var inlineMarks = map[string][2]string{
	"strong": {"**", "**"},
	"b":      {"**", "**"},
	"em":     {"*", "*"},
	"i":      {"*", "*"},
	"u":      {"<u>", "</u>"},
	"s":      {"~~", "~~"},
	"strike": {"~~", "~~"},
	"del":    {"~~", "~~"},
	"code":   {"`", "`"},
}

type listState struct {
	ordered bool
	n       int
}

type mdWriter struct {
	out     strings.Builder
	line    strings.Builder
	lists   []listState
	quote   int
	pre     bool
	href    []string
	heading int
}

// ToMarkdown approximates an HTML fragment as Markdown: headings, bold,
// italic, underline, strike, blockquotes, lists, links, images, code and
// paragraph breaks. Unknown tags are dropped and their text kept.
func ToMarkdown(fragment string) string {
	w := &mdWriter{}
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			w.text(tok.Data)
		case html.StartTagToken:
			w.open(tok)
		case html.SelfClosingTagToken:
			w.open(tok)
			if tok.Data != "br" && tok.Data != "img" && tok.Data != "hr" {
				w.close(tok.Data)
			}
		case html.EndTagToken:
			w.close(tok.Data)
		}
	}
	w.flush()
	return strings.TrimSpace(w.out.String()) + "\n"
}

func (w *mdWriter) text(s string) {
	if w.pre {
		w.line.WriteString(s)
		return
	}
	s = collapseSpace(s)
	if w.line.Len() == 0 || strings.HasSuffix(w.line.String(), " ") {
		s = strings.TrimLeft(s, " ")
	}
	w.line.WriteString(s)
}

// collapseSpace folds whitespace runs into one space, keeping a single space
// at either end so words around inline tags stay separated.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func (w *mdWriter) open(tok html.Token) {
	name := tok.Data
	if m, ok := inlineMarks[name]; ok && !w.pre {
		w.line.WriteString(m[0])
		return
	}
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.block()
		w.heading = int(name[1] - '0')
		w.line.WriteString(strings.Repeat("#", w.heading) + " ")
	case "p", "div":
		w.block()
	case "br":
		w.flushLine()
	case "hr":
		w.block()
		w.line.WriteString("---")
		w.block()
	case "blockquote":
		w.block()
		w.quote++
	case "ul":
		w.flushLine()
		w.lists = append(w.lists, listState{})
	case "ol":
		w.flushLine()
		w.lists = append(w.lists, listState{ordered: true})
	case "li":
		w.flushLine()
		indent := ""
		if len(w.lists) > 1 {
			indent = strings.Repeat("  ", len(w.lists)-1)
		}
		marker := "- "
		if n := len(w.lists); n > 0 && w.lists[n-1].ordered {
			w.lists[n-1].n++
			marker = fmt.Sprintf("%d. ", w.lists[n-1].n)
		}
		w.line.WriteString(indent + marker)
	case "pre":
		w.block()
		w.line.WriteString("```")
		w.flushLine()
		w.pre = true
	case "a":
		w.href = append(w.href, attr(tok, "href"))
		w.line.WriteString("[")
	case "img":
		w.line.WriteString(fmt.Sprintf("![%s](%s)", attr(tok, "alt"), attr(tok, "src")))
	}
}

func (w *mdWriter) close(name string) {
	if m, ok := inlineMarks[name]; ok && !w.pre {
		w.line.WriteString(m[1])
		return
	}
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.heading = 0
		w.block()
	case "p", "div":
		w.block()
	case "blockquote":
		w.block()
		if w.quote > 0 {
			w.quote--
		}
	case "ul", "ol":
		w.flushLine()
		if n := len(w.lists); n > 0 {
			w.lists = w.lists[:n-1]
		}
		if len(w.lists) == 0 {
			w.block()
		}
	case "li":
		w.flushLine()
	case "pre":
		w.flushLine()
		w.line.WriteString("```")
		w.pre = false
		w.block()
	case "a":
		href := ""
		if n := len(w.href); n > 0 {
			href = w.href[n-1]
			w.href = w.href[:n-1]
		}
		w.line.WriteString("](" + href + ")")
	}
}

// flushLine ends the current line.
func (w *mdWriter) flushLine() {
	line := w.line.String()
	w.line.Reset()
	if w.pre {
		w.out.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			w.out.WriteString("\n")
		}
		return
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if w.quote > 0 {
		line = strings.Repeat("> ", w.quote) + line
	}
	w.out.WriteString(line + "\n")
}

// block ends the current paragraph with a blank line.
func (w *mdWriter) block() {
	w.flushLine()
	s := w.out.String()
	if s != "" && !strings.HasSuffix(s, "\n\n") {
		w.out.WriteString("\n")
	}
}

func (w *mdWriter) flush() {
	w.flushLine()
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
