// Package fs persists small local state (session, preferences) as JSON files
// in a state directory and reports changes made by other processes.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/supervisor"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/pkg/core"
)

const fileExt = ".json"

// Config holds the configuration for the state directory store.
type Config struct {
	Path      string
	MustExist bool
	Logger    *zap.Logger
	// ErrorHandler receives runtime watcher failures. Optional.
	ErrorHandler func(error)
	// Debounce coalesces bursts of filesystem events per key. Zero means 50ms.
	Debounce time.Duration
}

// Store implements core.KeyValue with one file per key: <Path>/<key>.json.
type Store struct {
	Path   string
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
	writes        int
}

// NewStore creates a store rooted at config.Path.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}
	return &Store{Path: config.Path, config: config}
}

// Initialize ensures the state directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("state path does not exist: %s", s.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat state path: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("state path is not a directory: %s", s.Path)
		}
		return nil
	}
	if err := os.MkdirAll(s.Path, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// Get returns the bytes stored under key, or core.ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	path, err := s.filename(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Set replaces the value of key atomically.
func (s *Store) Set(key string, data []byte) error {
	path, err := s.filename(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Path, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := WriteFileAtomic(path, data, 0o600); err != nil {
		return err
	}
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	s.config.Logger.Debug("state written", zap.String("key", key))
	return nil
}

// Remove deletes key. Missing keys are ignored.
func (s *Store) Remove(key string) error {
	path, err := s.filename(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// Keys lists the stored keys.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if key, ok := keyOf(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Watch reports changes to stored keys until ctx is cancelled. The watcher
// runs under a supervisor that restarts it when fsnotify fails. The channel
// is closed once the supervisor has stopped.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	events := make(chan core.Event, 16)

	spec := supervisor.Spec{
		Name: "state-watcher",
		Type: string(worker.TypeGoroutine),
		Factory: func() (worker.Worker, error) {
			return newWatchWorker(s, events), nil
		},
		Backoff: supervisor.Backoff{
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Multiplier:      2,
			ResetDuration:   time.Minute,
			MaxRestarts:     5,
			MaxDuration:     5 * time.Minute,
		},
		RestartPolicy: supervisor.RestartOnFailure,
	}

	sup := supervisor.New("state-store", supervisor.StrategyOneForOne, spec)
	if err := sup.Start(ctx); err != nil {
		close(events)
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	go func() {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sup.Stop(stopCtx); err != nil {
			s.config.Logger.Warn("watcher did not stop cleanly", zap.Error(err))
		}
		close(events)
	}()
	return events, nil
}

func (s *Store) filename(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid state key %q", key)
	}
	return filepath.Join(s.Path, key+fileExt), nil
}

// keyOf maps a file name back to its key, skipping temp files.
func keyOf(name string) (string, bool) {
	if strings.HasPrefix(name, TempFilePrefix) || !strings.HasSuffix(name, fileExt) {
		return "", false
	}
	return strings.TrimSuffix(name, fileExt), true
}

var _ core.KeyValue = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
