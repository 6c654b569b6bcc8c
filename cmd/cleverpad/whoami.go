package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/core"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		switch ws.Service.Mode() {
		case core.ModeLoggedOut:
			info("Not logged in.")
		case core.ModeGuest:
			fmt.Printf("%s %s\n", core.GuestName, faint("(local only)"))
		default:
			u, err := ws.Profile(ctx)
			if err != nil {
				fatal("failed to load profile", err)
			}
			fmt.Printf("%s <%s> %s\n", u.Name, u.Email, faint("@ "+ws.Client.BaseURL()))
		}
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
