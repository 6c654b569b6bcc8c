package platform

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/pkg/adapters/fs"
	"github.com/aretw0/cleverpad/pkg/adapters/remote"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/typed"
)

// ErrNotWatchable is returned by Follow when local state is not file backed.
var ErrNotWatchable = errors.New("state store does not support watching")

// Workspace bundles the components of a running client.
type Workspace struct {
	Service     *core.Service
	Client      *remote.Client
	Sessions    *typed.SessionStore
	Preferences *typed.PreferencesStore
	// Store is the state directory; nil with the memory adapter.
	Store *fs.Store

	logger *zap.Logger
}

// Start restores the persisted session and loads its notes.
func (w *Workspace) Start(ctx context.Context) error {
	return w.Service.Start(ctx)
}

// Close flushes the open draft and waits for background saves.
func (w *Workspace) Close(ctx context.Context) error {
	return w.Service.Close(ctx)
}

// Login authenticates against the backend and switches to the account.
func (w *Workspace) Login(ctx context.Context, email, password string) (core.Session, error) {
	sess, err := w.Client.Authenticate(ctx, email, password)
	if err != nil {
		return core.Session{}, err
	}
	if err := w.Service.SetSession(ctx, sess); err != nil {
		return core.Session{}, err
	}
	return sess, nil
}

// Signup creates an account and logs into it.
func (w *Workspace) Signup(ctx context.Context, name, email, password string) (core.Session, error) {
	sess, err := w.Client.Register(ctx, remote.SignupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return core.Session{}, err
	}
	if err := w.Service.SetSession(ctx, sess); err != nil {
		return core.Session{}, err
	}
	return sess, nil
}

// Guest switches to a local-only session.
func (w *Workspace) Guest(ctx context.Context) error {
	return w.Service.EnterGuest(ctx)
}

// Logout forgets the account and clears notes and drafts.
func (w *Workspace) Logout(ctx context.Context) error {
	if s := w.Service.Session(); s != nil && s.Token != "" {
		w.Client.Forget(s.Token)
	}
	return w.Service.Logout(ctx)
}

// Profile returns the backend profile of the current account. A token the
// backend rejects ends the session.
func (w *Workspace) Profile(ctx context.Context) (remote.User, error) {
	s := w.Service.Session()
	if s == nil || s.Token == "" {
		return remote.User{}, core.ErrNoSession
	}
	u, err := w.Client.Me(ctx, s.Token)
	if remote.IsUnauthorized(err) {
		w.logger.Info("token rejected, logging out", zap.String("user", s.Name))
		if lerr := w.Logout(ctx); lerr != nil {
			return remote.User{}, errors.Join(err, lerr)
		}
	}
	return u, err
}

// Follow watches the state directory and reloads the session and theme
// stores when another process changes them. The returned channel carries
// every observed change and is closed when ctx ends.
func (w *Workspace) Follow(ctx context.Context) (<-chan core.Event, error) {
	if w.Store == nil {
		return nil, ErrNotWatchable
	}
	events, err := w.Store.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch state: %w", err)
	}

	out := make(chan core.Event, 16)
	go func() {
		defer close(out)
		for e := range events {
			w.apply(e)
			select {
			case out <- e:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

func (w *Workspace) apply(e core.Event) {
	switch e.Key {
	case typed.SessionKey:
		s := w.Sessions.Reload()
		w.logger.Debug("session changed on disk", zap.Bool("present", s != nil))
	case typed.ThemeKey:
		w.Preferences.Reload()
	}
}

// State collects the introspection snapshots of the workspace.
func (w *Workspace) State() map[string]any {
	st := map[string]any{
		"workspace": w.Service.State(),
		"theme":     w.Preferences.Theme(),
		"backend":   w.Client.BaseURL(),
	}
	if w.Store != nil {
		st["state_store"] = w.Store.State()
	}
	return st
}
