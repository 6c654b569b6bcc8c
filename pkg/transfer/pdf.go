package transfer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// ExportPDF renders one note as an A4 document: the title, then the plain
// text of each paragraph.
func ExportPDF(w io.Writer, n core.Note) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(n.Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(n.Title), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, para := range paragraphBreak.Split(markup.StripTags(n.Content), -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 5.5, tr(para), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf for note %s: %w", n.ID, err)
	}
	return nil
}
