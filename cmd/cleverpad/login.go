package main

import (
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log into a CleverPad account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		email := orPrompt(loginEmail, "E-mail: ", false)
		password := orPrompt(loginPassword, "Password: ", true)

		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		sess, err := ws.Login(ctx, email, password)
		if err != nil {
			fatal("login failed", err)
		}
		success("Welcome back, %s! %d notes loaded.", sess.Name, len(ws.Service.Notes()))
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account e-mail")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when empty)")
}
