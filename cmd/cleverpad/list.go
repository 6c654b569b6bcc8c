package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/view"
)

var (
	listJSON   bool
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		notes := view.Filter(ws.Service.Notes(), listSearch)

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("failed to encode notes", err)
			}
			return
		}

		if len(notes) == 0 {
			if listSearch != "" {
				info("No notes match %q.", listSearch)
			} else {
				info("No notes yet. Create one with `cleverpad new`.")
			}
			return
		}
		for _, n := range notes {
			fmt.Printf("%-8s %s %s\n", n.ID, n.Title, faint(noteDate(n)))
		}
	},
}

func noteDate(n core.Note) string {
	t := n.UpdatedAt
	if t.IsZero() {
		t = n.CreatedAt
	}
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(time.DateTime)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "only notes whose title or text contains this")
}
