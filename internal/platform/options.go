package platform

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/pkg/core"
)

// DefaultBaseURL is the backend address used when nothing is configured.
const DefaultBaseURL = "http://localhost:8000"

// options holds the internal configuration of a workspace.
type options struct {
	baseURL      string
	logger       *zap.Logger
	clock        core.Clock
	httpClient   *http.Client
	adapter      string
	repository   core.Repository
	kv           core.KeyValue
	debounce     time.Duration
	saveTimeout  time.Duration
	profileTTL   time.Duration
	flushOnLeave *bool
	mustExist    bool
	forceTemp    bool
	devSafety    bool
	errorHandler func(error)
}

// Option configures a workspace.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		baseURL:   DefaultBaseURL,
		logger:    zap.NewNop(),
		clock:     core.RealClock{},
		adapter:   "fs",
		devSafety: true,
	}
}

// WithBaseURL sets the REST backend address.
func WithBaseURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.baseURL = url
		}
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock injects the time source for autosave timers and timestamps.
func WithClock(clock core.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithHTTPClient sets the client used to reach the backend.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithAdapter selects where local state lives: "fs" (default) or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithRepository makes every session use repo instead of the remote or
// guest repository. Intended for tests and embedding.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithKeyValue injects the store backing the session and preferences,
// bypassing the adapter.
func WithKeyValue(kv core.KeyValue) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithSaveTimeout bounds background saves and reconciles.
func WithSaveTimeout(d time.Duration) Option {
	return func(o *options) {
		o.saveTimeout = d
	}
}

// WithProfileTTL sets how long /auth/me answers are cached.
func WithProfileTTL(d time.Duration) Option {
	return func(o *options) {
		o.profileTTL = d
	}
}

// WithFlushOnLeave controls whether leaving a note with unsaved edits saves
// it in the background.
func WithFlushOnLeave(enabled bool) Option {
	return func(o *options) {
		o.flushOnLeave = &enabled
	}
}

// WithMustExist requires the state directory to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithForceTemp keeps state in a temporary directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used under `go run` and `go test`:
// when enabled (default), state is redirected to a temporary directory so a
// development build never touches the real session file.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

// WithWatcherErrorHandler receives runtime failures of the state watcher.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}
