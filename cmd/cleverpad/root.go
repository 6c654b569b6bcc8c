package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/internal/platform"
	"github.com/aretw0/cleverpad/pkg/core"
)

var (
	cfgFile  string
	stateDir string
	baseURL  string
	verbose  bool

	cfg    *platform.Config
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cleverpad",
	Short: "A note client with autosave, guest mode and Markdown import/export",
	Long: `CleverPad keeps your notes on a CleverPad backend, or in memory as a guest.
Edits are autosaved after a short pause; nothing typed is lost when switching notes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := platform.LoadConfig(platform.ResolveConfigPath(cfgFile))
		if err != nil {
			return err
		}
		if stateDir != "" {
			c.StateDir = stateDir
		}
		if baseURL != "" {
			c.BaseURL = baseURL
		}
		cfg = c
		logger = newLogger(verbose, c.Log.Level, c.Log.File)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fatal("error", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .cleverpad.toml upwards, then the user config dir)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "directory holding the session and preferences")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openWorkspace wires and starts a workspace. A listing failure during start
// is returned together with the workspace so session commands still work.
func openWorkspace(ctx context.Context) (*platform.Workspace, error) {
	opts := append(cfg.Options(), platform.WithLogger(logger))
	ws, err := platform.New(cfg.StateDir, opts...)
	if err != nil {
		return nil, err
	}
	return ws, ws.Start(ctx)
}

// mustWorkspace opens the workspace and requires a session with its notes
// loaded.
func mustWorkspace(ctx context.Context) *platform.Workspace {
	ws, err := openWorkspace(ctx)
	if ws == nil {
		fatal("failed to open workspace", err)
	}
	if ws.Service.Mode() == core.ModeLoggedOut {
		fatal("not logged in", errors.New("run `cleverpad login` or `cleverpad guest` first"))
	}
	if err != nil {
		fatal("failed to load notes", err)
	}
	return ws
}

func closeWorkspace(ctx context.Context, ws *platform.Workspace) {
	if err := ws.Close(ctx); err != nil {
		failure("unsaved changes could not be written: %v", err)
	}
}
