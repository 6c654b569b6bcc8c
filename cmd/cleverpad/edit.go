package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	editTitle   string
	editContent string
	editFile    string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the title or content of a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		titleSet := cmd.Flags().Changed("title")
		contentSet := cmd.Flags().Changed("content") || cmd.Flags().Changed("file")
		if !titleSet && !contentSet {
			fatal("nothing to change", errors.New("pass --title, --content or --file"))
		}

		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		d, err := ws.Service.Open(args[0])
		if err != nil {
			fatal("failed to open note", err)
		}
		title, content := d.Title, d.Content
		if titleSet {
			title = editTitle
		}
		if contentSet {
			if content, err = contentFromFlags(editContent, editFile); err != nil {
				fatal("invalid content", err)
			}
		}

		if err := ws.Service.Edit(title, content); err != nil {
			fatal("failed to edit note", err)
		}
		if err := ws.Service.Save(ctx); err != nil {
			fatal("failed to save note", err)
		}
		success("Saved note %s.", d.NoteID)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "new title")
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "new text (Markdown or HTML)")
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "read the new content from a Markdown or HTML file")
	editCmd.MarkFlagsMutuallyExclusive("content", "file")
}
