package remote_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cleverpad/internal/testutil"
	"github.com/aretw0/cleverpad/pkg/adapters/remote"
	"github.com/aretw0/cleverpad/pkg/core"
)

func setup(t *testing.T) (*testutil.Backend, *remote.Client) {
	t.Helper()
	backend := testutil.NewBackend(t)
	backend.AddUser("Alice", "alice@example.com", "secret")
	return backend, remote.NewClient(backend.URL + "/")
}

func TestAuthenticate(t *testing.T) {
	backend, client := setup(t)
	ctx := context.Background()

	sess, err := client.Authenticate(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Alice", sess.Name)
	assert.Equal(t, "alice@example.com", sess.Email)
	assert.Equal(t, "1", sess.UserID)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, core.ModeRemote, sess.Mode())

	_, err = client.Me(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Calls("GET /auth/me"), "profile answered from cache")

	_, err = client.Authenticate(ctx, "alice@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnauthorized)
	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Incorrect e-mail or password", apiErr.Detail)
}

func TestRegisterLogsIn(t *testing.T) {
	_, client := setup(t)
	sess, err := client.Register(context.Background(), remote.SignupRequest{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", sess.Name)
	assert.NotEmpty(t, sess.Token)

	_, err = client.Register(context.Background(), remote.SignupRequest{
		Name: "Bob", Email: "bob@example.com", Password: "pw",
	})
	assert.Error(t, err, "duplicate signup")
}

func TestRepositoryCRUD(t *testing.T) {
	backend, client := setup(t)
	ctx := context.Background()
	repo := remote.NewRepository(client, backend.Token("alice@example.com", time.Hour))

	first, err := repo.Create(ctx, "first", "<p>one</p>")
	require.NoError(t, err)
	second, err := repo.Create(ctx, "second", "<p>two</p>")
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID, "numeric ids become strings")

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID, "backend lists newest first")

	require.NoError(t, repo.Update(ctx, first.ID, "first!", "<p>uno</p>"))
	stored := backend.Notes("alice@example.com")
	assert.Equal(t, "first!", stored[1].Title)

	err = repo.Update(ctx, "999", "x", "y")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, second.ID))
	require.NoError(t, repo.Delete(ctx, second.ID), "deleting a missing note is a no-op")
	assert.Len(t, backend.Notes("alice@example.com"), 1)
}

func TestRepositoryPropagatesFailures(t *testing.T) {
	backend, client := setup(t)
	ctx := context.Background()
	repo := remote.NewRepository(client, backend.Token("alice@example.com", time.Hour))
	n, err := repo.Create(ctx, "t", "c")
	require.NoError(t, err)

	backend.Fail("PUT /notes/", http.StatusInternalServerError)
	err = repo.Update(ctx, n.ID, "t", "c2")
	var apiErr *remote.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)

	backend.Fail("DELETE /notes/", http.StatusBadGateway)
	assert.Error(t, repo.Delete(ctx, n.ID))
}

func TestRepositoryRejectsBadToken(t *testing.T) {
	_, client := setup(t)
	repo := remote.NewRepository(client, "garbage")

	_, err := repo.List(context.Background())
	assert.True(t, remote.IsUnauthorized(err))
}
