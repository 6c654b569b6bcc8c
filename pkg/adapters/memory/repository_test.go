package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cleverpad/internal/testutil"
	"github.com/aretw0/cleverpad/pkg/adapters/memory"
	"github.com/aretw0/cleverpad/pkg/core"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("g-%d", s.n)
}

func TestCreatePrependsWithUniqueID(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()

	first, err := repo.Create(ctx, "first", "<p>a</p>")
	require.NoError(t, err)
	second, err := repo.Create(ctx, "second", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second.ID, notes[0].ID, "newest note comes first")
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestCreateUsesInjectedClockAndIDs(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := testutil.NewFakeClock(start)
	repo := memory.NewRepository(memory.WithClock(clock), memory.WithIDGenerator(&seqIDs{}))

	n, err := repo.Create(context.Background(), "t", "c")
	require.NoError(t, err)
	assert.Equal(t, "g-1", n.ID)
	assert.Equal(t, start, n.CreatedAt)
	assert.Equal(t, start, n.UpdatedAt)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewFakeClock(time.Unix(0, 0))
	repo := memory.NewRepository(memory.WithClock(clock))
	n, err := repo.Create(ctx, "t", "c")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, repo.Update(ctx, n.ID, "t2", "c2"))

	notes, _ := repo.List(ctx)
	assert.Equal(t, "t2", notes[0].Title)
	assert.Equal(t, "c2", notes[0].Content)
	assert.Equal(t, time.Unix(60, 0), notes[0].UpdatedAt)

	err = repo.Update(ctx, "missing", "x", "y")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	n, err := repo.Create(ctx, "keep", "")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "does-not-exist"))
	notes, _ := repo.List(ctx)
	assert.Len(t, notes, 1)

	require.NoError(t, repo.Delete(ctx, n.ID))
	require.NoError(t, repo.Delete(ctx, n.ID))
	notes, _ = repo.List(ctx)
	assert.Empty(t, notes)
}

func TestListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()
	_, _ = repo.Create(ctx, "a", "")

	notes, _ := repo.List(ctx)
	notes[0].Title = "mutated"

	again, _ := repo.List(ctx)
	assert.Equal(t, "a", again[0].Title)
}

func TestKV(t *testing.T) {
	kv := memory.NewKV()

	_, err := kv.Get("user")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, kv.Set("user", []byte(`{"name":"Guest"}`)))
	got, err := kv.Get("user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Guest"}`, string(got))

	require.NoError(t, kv.Remove("user"))
	require.NoError(t, kv.Remove("user"))
	_, err = kv.Get("user")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
