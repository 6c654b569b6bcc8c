package main

import (
	"github.com/spf13/cobra"
)

var (
	signupName     string
	signupEmail    string
	signupPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log into it",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		name := orPrompt(signupName, "Name: ", false)
		email := orPrompt(signupEmail, "E-mail: ", false)
		password := orPrompt(signupPassword, "Password: ", true)

		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		sess, err := ws.Signup(ctx, name, email, password)
		if err != nil {
			fatal("signup failed", err)
		}
		success("Account created. Logged in as %s.", sess.Name)
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	signupCmd.Flags().StringVarP(&signupName, "name", "n", "", "display name")
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "account e-mail")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "password (prompted when empty)")
}
