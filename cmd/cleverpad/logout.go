package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/core"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		// The backend may be unreachable; logging out must still work.
		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		if ws.Service.Mode() == core.ModeLoggedOut {
			info("Not logged in.")
			return
		}
		if err := ws.Logout(ctx); err != nil {
			fatal("logout failed", err)
		}
		success("Logged out.")
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
