package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/cleverpad/pkg/markup"
)

// readContent loads note content from a file: Markdown is rendered to HTML,
// .html files are taken as is.
func readContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return string(data), nil
	default:
		return markup.FromMarkdown(string(data))
	}
}

// textToHTML wraps plain text typed on the command line into paragraphs.
func textToHTML(text string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(text), "<") {
		return text, nil
	}
	return markup.FromMarkdown(text)
}
