package cleverpad

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/internal/platform"
	"github.com/aretw0/cleverpad/pkg/core"
)

// --- Types ---

// Note is a note as stored by the backend or the guest store.
type Note = core.Note

// Session identifies who is logged in.
type Session = core.Session

// Draft is the edit buffer of one note.
type Draft = core.Draft

// Workspace bundles the client components. See platform.Workspace.
type Workspace = platform.Workspace

// Config is the on-disk client configuration.
type Config = platform.Config

// --- Configuration ---

// Option configures a Workspace.
type Option = platform.Option

// WithBaseURL sets the REST backend address.
func WithBaseURL(url string) Option {
	return platform.WithBaseURL(url)
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock injects the time source for autosave timers and timestamps.
func WithClock(clock core.Clock) Option {
	return platform.WithClock(clock)
}

// WithHTTPClient sets the client used to reach the backend.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithAdapter selects where local state lives: "fs" (default) or "memory".
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithRepository makes every session use repo.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) Option {
	return platform.WithDebounce(d)
}

// WithSaveTimeout bounds background saves.
func WithSaveTimeout(d time.Duration) Option {
	return platform.WithSaveTimeout(d)
}

// WithFlushOnLeave controls background saving of a note that is left with
// unsaved edits.
func WithFlushOnLeave(enabled bool) Option {
	return platform.WithFlushOnLeave(enabled)
}

// WithForceTemp keeps local state in a temporary directory.
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires the state directory to exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithDevSafety controls the `go run`/`go test` state sandbox.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// --- Factory ---

// New creates a Workspace keeping local state in stateDir ("" for the
// per-user default).
func New(stateDir string, opts ...Option) (*Workspace, error) {
	return platform.New(stateDir, opts...)
}

// LoadConfig reads a TOML config file and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveStateDir returns the directory actually used for local state.
func ResolveStateDir(path string, forceTemp bool) string {
	return platform.ResolveStateDir(path, forceTemp)
}

// IsDevRun reports whether the binary was built by `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}
