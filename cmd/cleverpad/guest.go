package main

import (
	"github.com/spf13/cobra"
)

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Continue without an account",
	Long: `Switches to guest mode. Guest notes are kept in memory only: they live as
long as one process, so use "cleverpad shell" to work with them.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		if err := ws.Guest(ctx); err != nil {
			fatal("failed to enter guest mode", err)
		}
		success("Continuing as guest. Notes will not be kept after the process exits.")
	},
}

func init() {
	rootCmd.AddCommand(guestCmd)
}
