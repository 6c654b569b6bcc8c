package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/pkg/core"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|system|cycle]",
	Short:     "Show or change the display theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "system", "cycle"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)

		if len(args) == 0 {
			info("%s", ws.Preferences.Theme())
			return
		}
		t, err := setTheme(ws.Preferences, args[0])
		if err != nil {
			fatal("failed to change theme", err)
		}
		success("Theme set to %s.", t)
	},
}

type themeStore interface {
	Set(core.Theme) error
	Cycle() (core.Theme, error)
}

func setTheme(prefs themeStore, arg string) (core.Theme, error) {
	if arg == "cycle" {
		return prefs.Cycle()
	}
	t, err := core.ParseTheme(arg)
	if err != nil {
		return "", err
	}
	return t, prefs.Set(t)
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
