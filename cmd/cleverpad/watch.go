package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/adapters/lifecycle"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/typed"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow session and theme changes made by other cleverpad processes",
	Long: `Watches the local state directory. Logging in or out, entering guest mode
or changing the theme from another terminal is reported here as it happens.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		events, err := ws.Follow(ctx)
		if err != nil {
			fatal("failed to watch state", err)
		}
		src := lifecycle.NewSource(events, typed.SessionKey, typed.ThemeKey)
		if err := src.Start(ctx); err != nil {
			fatal("failed to watch state", err)
		}

		info("Watching %s (Ctrl+C to stop)", ws.Store.Path)
		for e := range src.Events() {
			fmt.Printf("%s %s %s\n", faint(time.Now().Format(time.TimeOnly)), e, describe(ws.Service.Mode(), ws.Preferences.Theme()))
		}
	},
}

func describe(mode core.Mode, theme core.Theme) string {
	return faint(fmt.Sprintf("(mode %s, theme %s)", mode, theme))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
