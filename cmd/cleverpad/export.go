package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/adapters/fs"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/transfer"
)

var (
	exportOut    string
	exportNote   string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export notes to a zip archive, or one note to Markdown, JSON or PDF",
	Long: `Without --note, every note is written to a zip archive holding a Markdown
and a JSON file per note plus manifest.json. With --note, a single note is
written in the --format of choice.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		out := exportOut

		if exportNote == "" {
			notes := ws.Service.Notes()
			if len(notes) == 0 {
				info("No notes to export.")
				return
			}
			now := time.Now()
			if out == "" {
				out = fmt.Sprintf("cleverpad-export-%s.zip", now.Format(time.DateOnly))
			}
			var m transfer.Manifest
			writeExport(out, func(w io.Writer) (err error) {
				m, err = transfer.Export(w, notes, now)
				return err
			})
			success("Exported %d notes (%d words) to %s.", m.NoteCount, m.TotalWords, out)
			return
		}

		n, err := ws.Service.Note(exportNote)
		if err != nil {
			fatal("failed to export note", err)
		}
		var render func(io.Writer) error
		switch exportFormat {
		case "md", "markdown":
			render = document(transfer.MarkdownDocument, n)
		case "json":
			render = document(transfer.JSONDocument, n)
		case "pdf":
			render = func(w io.Writer) error { return transfer.ExportPDF(w, n) }
		default:
			fatal("failed to export note", fmt.Errorf("unknown format %q (want md, json or pdf)", exportFormat))
		}
		if out == "" {
			out = transfer.Slug(n.Title, n.ID) + "." + extension(exportFormat)
		}
		writeExport(out, render)
		success("Exported %q to %s.", n.Title, out)
	},
}

func extension(format string) string {
	if format == "markdown" {
		return "md"
	}
	return format
}

func document(encode func(core.Note) ([]byte, error), n core.Note) func(io.Writer) error {
	return func(w io.Writer) error {
		data, err := encode(n)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}

// writeExport only touches the destination once the whole payload exists.
func writeExport(path string, render func(io.Writer) error) {
	if err := fs.WriteAtomic(filepath.Clean(path), 0o644, render); err != nil {
		fatal("failed to export", err)
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "destination file (default: cleverpad-export-<date>.zip)")
	exportCmd.Flags().StringVar(&exportNote, "note", "", "export only this note")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "single note format: md, json or pdf")
}
