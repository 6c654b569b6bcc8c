package main

import (
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		n, err := ws.Service.Note(args[0])
		if err != nil {
			fatal("failed to delete note", err)
		}
		if err := ws.Service.Delete(ctx, n.ID); err != nil {
			fatal("failed to delete note", err)
		}
		success("Deleted %q.", n.Title)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
