package main

import (
	"github.com/spf13/cobra"
)

var (
	newTitle   string
	newContent string
	newFile    string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a note",
	Long:  `Creates a note. Without --title it is named "Untitled - <date time>".`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		content, err := contentFromFlags(newContent, newFile)
		if err != nil {
			fatal("invalid content", err)
		}
		n, err := ws.Service.Create(ctx, newTitle, content)
		if err != nil {
			fatal("failed to create note", err)
		}
		success("Created note %s (%s).", n.ID, n.Title)
	},
}

func contentFromFlags(text, file string) (string, error) {
	if file != "" {
		return readContent(file)
	}
	if text == "" {
		return "", nil
	}
	return textToHTML(text)
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "note title")
	newCmd.Flags().StringVarP(&newContent, "content", "c", "", "note text (Markdown or HTML)")
	newCmd.Flags().StringVarP(&newFile, "file", "f", "", "read the content from a Markdown or HTML file")
	newCmd.MarkFlagsMutuallyExclusive("content", "file")
}
