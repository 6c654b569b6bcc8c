package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/view"
)

var (
	statsSearch string
	statsJSON   bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws := mustWorkspace(ctx)
		defer closeWorkspace(ctx, ws)

		o := view.Summarize(ws.Service.Notes(), statsSearch, time.Now())
		if statsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(o); err != nil {
				fatal("failed to encode stats", err)
			}
			return
		}
		printOverview(o)
	},
}

func printOverview(o view.Overview) {
	fmt.Printf("Notes:          %d (%d this week, %d today)\n", o.TotalNotes, o.ThisWeek, o.Today)
	fmt.Printf("Words:          %d (average %d)\n", o.TotalWords, o.AverageWords)
	fmt.Printf("Characters:     %d\n", o.TotalCharacters)
	fmt.Printf("Reading time:   %d min\n", o.ReadingMinutes)
	if o.Longest != nil {
		fmt.Printf("Longest note:   %s %s\n", o.Longest.Title, faint(fmt.Sprintf("(%d words)", o.Longest.Words)))
	}
	if o.SearchResults != nil {
		fmt.Printf("Search results: %d\n", *o.SearchResults)
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsSearch, "search", "s", "", "also count notes matching this query")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}
