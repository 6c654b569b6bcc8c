package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/markup"
	"github.com/aretw0/cleverpad/pkg/view"
)

var showHTML bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a note as Markdown",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		n, err := ws.Service.Note(args[0])
		if err != nil {
			fatal("failed to read note", err)
		}

		fmt.Printf("# %s\n\n", n.Title)
		if showHTML {
			fmt.Println(n.Content)
		} else {
			fmt.Println(markup.ToMarkdown(n.Content))
		}

		st := view.StatsFor(n)
		fmt.Println(faint(fmt.Sprintf("\n%d words · %d characters · %d paragraphs · %d min read",
			st.Words, st.Characters, st.Paragraphs, st.ReadingMinutes)))
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showHTML, "html", false, "print the stored HTML instead of Markdown")
}
