package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cleverpad/internal/platform"
	"github.com/aretw0/cleverpad/internal/testutil"
	"github.com/aretw0/cleverpad/pkg/adapters/fs"
	"github.com/aretw0/cleverpad/pkg/core"
)

func open(t *testing.T, dir string, opts ...platform.Option) *platform.Workspace {
	t.Helper()
	ws, err := platform.New(dir, opts...)
	require.NoError(t, err)
	require.NoError(t, ws.Start(context.Background()))
	t.Cleanup(func() { _ = ws.Close(context.Background()) })
	return ws
}

func TestWorkspaceLoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	backend.AddUser("Ana", "ana@example.com", "secret")
	dir := t.TempDir()

	ws := open(t, dir, platform.WithBaseURL(backend.URL))
	assert.Equal(t, core.ModeLoggedOut, ws.Service.Mode())

	_, err := ws.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	sess, err := ws.Login(ctx, "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", sess.Name)
	assert.Equal(t, core.ModeRemote, ws.Service.Mode())

	n, err := ws.Service.Create(ctx, "hello", "<p>first</p>")
	require.NoError(t, err)
	require.NoError(t, ws.Service.SetContent("<p>edited</p>"))
	require.NoError(t, ws.Service.Save(ctx))

	stored := backend.Notes("ana@example.com")
	require.Len(t, stored, 1)
	assert.Equal(t, "<p>edited</p>", stored[0].Content)

	// A second process on the same state directory resumes the account.
	again := open(t, dir, platform.WithBaseURL(backend.URL))
	assert.Equal(t, core.ModeRemote, again.Service.Mode())
	require.Len(t, again.Service.Notes(), 1)
	assert.Equal(t, n.ID, again.Service.Notes()[0].ID)

	require.NoError(t, again.Logout(ctx))
	assert.Nil(t, again.Sessions.Load())
}

func TestWorkspaceSignup(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	ws := open(t, t.TempDir(), platform.WithBaseURL(backend.URL))

	sess, err := ws.Signup(ctx, "Bo", "bo@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bo@example.com", sess.Email)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, 1, backend.Calls("POST /auth/signup"))

	u, err := ws.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bo", u.Name)
	assert.Equal(t, 1, backend.Calls("GET /auth/me"), "profile is cached")
}

func TestWorkspaceRejectedTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	ws := open(t, t.TempDir(), platform.WithBaseURL(backend.URL))

	err := ws.Service.SetSession(ctx, core.Session{Name: "Ana", Token: "not-a-token"})
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = ws.Profile(ctx)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Equal(t, core.ModeLoggedOut, ws.Service.Mode())
	assert.Nil(t, ws.Sessions.Load())
}

func TestWorkspaceMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	ws := open(t, "", platform.WithAdapter("memory"))
	assert.Nil(t, ws.Store)

	require.NoError(t, ws.Guest(ctx))
	_, err := ws.Service.Create(ctx, "", "<p>scratch</p>")
	require.NoError(t, err)
	assert.Len(t, ws.Service.Notes(), 1)

	_, err = ws.Follow(ctx)
	assert.ErrorIs(t, err, platform.ErrNotWatchable)

	theme, err := ws.Preferences.Cycle()
	require.NoError(t, err)
	assert.Equal(t, core.ThemeLight, theme)

	st := ws.State()
	assert.Equal(t, core.ThemeLight, st["theme"])
	assert.NotContains(t, st, "state_store")
}

func TestWorkspaceUnknownAdapter(t *testing.T) {
	_, err := platform.New(t.TempDir(), platform.WithAdapter("s3"))
	assert.ErrorContains(t, err, "unknown adapter")
}

func TestWorkspaceInjectedRepository(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockRepository(core.Note{ID: "1", Title: "fixture"})
	ws := open(t, "", platform.WithAdapter("memory"), platform.WithRepository(repo))

	require.NoError(t, ws.Guest(ctx))
	d, ok := ws.Service.Current()
	require.True(t, ok)
	assert.Equal(t, "1", d.NoteID)
}

func TestWorkspaceFollowsOtherProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	watcher := open(t, dir)
	events, err := watcher.Follow(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return watcher.Store.State().(fs.StoreState).WatcherActive
	}, 5*time.Second, 20*time.Millisecond)

	other := open(t, dir)
	require.NoError(t, other.Guest(context.Background()))

	assert.Eventually(t, func() bool {
		return watcher.Service.Mode() == core.ModeGuest
	}, 5*time.Second, 20*time.Millisecond)

	select {
	case e := <-events:
		assert.Equal(t, "user", e.Key)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
}
