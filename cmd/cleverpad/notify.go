package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/aretw0/cleverpad/pkg/core"
)

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.Faint)
	infoColor = color.New(color.FgCyan)
)

// success prints a confirmation line, the CLI counterpart of a toast.
func success(format string, args ...any) {
	okColor.Fprintf(os.Stdout, "✓ "+format+"\n", args...)
}

func failure(format string, args ...any) {
	errColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func info(format string, args ...any) {
	infoColor.Fprintf(os.Stdout, format+"\n", args...)
}

func statusLabel(s core.SaveStatus) string {
	switch s {
	case core.StatusSaved:
		return okColor.Sprint("saved")
	case core.StatusSaving:
		return infoColor.Sprint("saving…")
	default:
		return color.YellowString("unsaved")
	}
}

func faint(s string) string {
	return dimColor.Sprint(s)
}
