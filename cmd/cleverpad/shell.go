package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/cleverpad/internal/platform"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/markup"
	"github.com/aretw0/cleverpad/pkg/view"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Edit notes interactively with autosave",
	Long: `Starts an interactive session. Edits to the open note are saved after a
short pause; switching notes or quitting writes pending changes first.
This is also the place for guest notes, which live only as long as the shell.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if ws == nil {
			fatal("failed to open workspace", err)
		}
		defer closeWorkspace(ctx, ws)
		if err != nil {
			failure("failed to load notes: %v", err)
		}

		sh := &shell{ws: ws}
		defer sh.unsubscribe()
		sh.follow(ctx)
		sh.run(ctx)
	},
}

type shell struct {
	ws *platform.Workspace

	mu     sync.Mutex
	drafts *core.DraftController
	cancel func()
}

const shellHelp = `Commands:
  ls [query]        list notes, optionally filtered
  open <id>         make a note the active one
  new [title]       create a note and open it
  title <text>      rename the open note
  write <text>      replace the text of the open note (Markdown)
  append <text>     add a paragraph to the open note (Markdown)
  show              print the open note
  save              save the open note now
  rm <id>           delete a note
  stats [query]     collection statistics
  theme [name]      show, set or cycle the theme
  guest             switch to a local guest session
  whoami            show the session
  help              this text
  quit              save and leave`

func (sh *shell) run(ctx context.Context) {
	info("cleverpad %s, type `help` for commands", sh.ws.Service.Mode())
	for {
		if ctx.Err() != nil {
			return
		}
		sh.subscribe()

		line, err := prompt(sh.promptLabel())
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return
		}
		if err != nil {
			failure("%v", err)
			return
		}
		name, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		if name == "" {
			continue
		}
		if name == "quit" || name == "exit" {
			return
		}
		if err := sh.exec(ctx, name, rest); err != nil {
			failure("%v", err)
		}
	}
}

func (sh *shell) promptLabel() string {
	d, ok := sh.ws.Service.Current()
	if !ok {
		return "> "
	}
	return fmt.Sprintf("%s [%s]> ", d.Title, statusLabel(d.Status))
}

func (sh *shell) exec(ctx context.Context, name, arg string) error {
	svc := sh.ws.Service
	switch name {
	case "help":
		fmt.Println(shellHelp)
	case "ls":
		for _, n := range view.Filter(svc.Notes(), arg) {
			marker := " "
			if d, ok := svc.Current(); ok && d.NoteID == n.ID {
				marker = "*"
			}
			fmt.Printf("%s %-8s %s\n", marker, n.ID, n.Title)
		}
	case "open":
		d, err := svc.Open(arg)
		if err != nil {
			return err
		}
		info("Opened %q.", d.Title)
	case "new":
		n, err := svc.Create(ctx, arg, "")
		if err != nil {
			return err
		}
		success("Created %q.", n.Title)
	case "title":
		return svc.SetTitle(arg)
	case "write":
		html, err := markup.FromMarkdown(arg)
		if err != nil {
			return err
		}
		return svc.SetContent(html)
	case "append":
		d, ok := svc.Current()
		if !ok {
			return core.ErrNoActiveNote
		}
		html, err := markup.FromMarkdown(arg)
		if err != nil {
			return err
		}
		return svc.SetContent(d.Content + html)
	case "show":
		d, ok := svc.Current()
		if !ok {
			return core.ErrNoActiveNote
		}
		fmt.Printf("# %s\n\n%s\n", d.Title, markup.ToMarkdown(d.Content))
	case "save":
		if err := svc.Save(ctx); err != nil {
			return err
		}
		success("Saved.")
	case "rm":
		if err := svc.Delete(ctx, arg); err != nil {
			return err
		}
		success("Deleted.")
	case "stats":
		printOverview(view.Summarize(svc.Notes(), arg, time.Now()))
	case "theme":
		if arg == "" {
			fmt.Println(sh.ws.Preferences.Theme())
			return nil
		}
		t, err := setTheme(sh.ws.Preferences, arg)
		if err != nil {
			return err
		}
		success("Theme set to %s.", t)
	case "guest":
		return sh.ws.Guest(ctx)
	case "whoami":
		if s := svc.Session(); s != nil {
			fmt.Printf("%s %s\n", s.Name, faint("("+string(s.Mode())+")"))
		} else {
			info("Not logged in.")
		}
	default:
		return fmt.Errorf("unknown command %q, try `help`", name)
	}
	return nil
}

// subscribe follows save transitions of the current draft controller. A
// session switch replaces the controller, so this is re-checked per prompt.
func (sh *shell) subscribe() {
	d := sh.ws.Service.Drafts()
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if d == sh.drafts {
		return
	}
	if sh.cancel != nil {
		sh.cancel()
		sh.cancel = nil
	}
	sh.drafts = d
	if d == nil {
		return
	}
	sh.cancel = d.OnChange(func(d core.Draft) {
		switch d.Status {
		case core.StatusSaved:
			fmt.Printf("\n%s %s\n", faint(d.Title), statusLabel(d.Status))
		case core.StatusSaving:
			logger.Debug("autosave started")
		}
	})
}

func (sh *shell) unsubscribe() {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.cancel != nil {
		sh.cancel()
	}
}

// follow reports session and theme changes made by other processes.
func (sh *shell) follow(ctx context.Context) {
	if sh.ws.Store == nil {
		return
	}
	events, err := sh.ws.Follow(ctx)
	if err != nil {
		failure("not following other processes: %v", err)
		return
	}
	go func() {
		for e := range events {
			fmt.Printf("\n%s %s\n", faint("state changed:"), e)
		}
	}()
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
