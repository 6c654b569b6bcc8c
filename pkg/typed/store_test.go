package typed_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cleverpad/pkg/adapters/memory"
	"github.com/aretw0/cleverpad/pkg/core"
	"github.com/aretw0/cleverpad/pkg/typed"
)

type failingKV struct{ *memory.KV }

func (failingKV) Get(string) ([]byte, error) { return nil, errors.New("disk on fire") }

func TestLoadFailsSoft(t *testing.T) {
	cases := []struct {
		name   string
		stored string
	}{
		{"malformed json", `{"name":`},
		{"wrong shape", `[1,2,3]`},
		{"missing name", `{"token":"abc"}`},
		{"plain string", `Guest`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kv := memory.NewKV()
			require.NoError(t, kv.Set(typed.SessionKey, []byte(tc.stored)))
			assert.Nil(t, typed.NewSessionStore(kv).Load())
		})
	}

	t.Run("absent", func(t *testing.T) {
		assert.Nil(t, typed.NewSessionStore(memory.NewKV()).Load())
	})

	t.Run("read error", func(t *testing.T) {
		assert.Nil(t, typed.NewSessionStore(failingKV{memory.NewKV()}).Load())
	})
}

func TestSetPublishesAndPersists(t *testing.T) {
	kv := memory.NewKV()
	store := typed.NewSessionStore(kv)

	var seen []*core.Session
	cancel := store.Subscribe(func(s *core.Session) { seen = append(seen, s) })

	require.NoError(t, store.Set(core.GuestSession()))
	loaded := typed.NewSessionStore(kv).Load()
	require.NotNil(t, loaded)
	assert.True(t, loaded.IsGuest())

	require.NoError(t, store.Clear())
	assert.Nil(t, store.Load())

	cancel()
	require.NoError(t, store.Set(core.GuestSession()))

	require.Len(t, seen, 2, "no notifications after cancel")
	require.NotNil(t, seen[0])
	assert.Equal(t, core.GuestName, seen[0].Name)
	assert.Nil(t, seen[1])
}

func TestSetRejectsInvalid(t *testing.T) {
	store := typed.NewSessionStore(memory.NewKV())
	assert.Error(t, store.Set(core.Session{}))
}

func TestReloadPublishesOnlyChanges(t *testing.T) {
	kv := memory.NewKV()
	store := typed.NewSessionStore(kv)
	store.Load()

	calls := 0
	store.Subscribe(func(*core.Session) { calls++ })

	store.Reload()
	assert.Equal(t, 0, calls, "nothing changed")

	require.NoError(t, kv.Set(typed.SessionKey, []byte(`{"name":"Guest"}`)))
	got := store.Reload()
	require.NotNil(t, got)
	assert.Equal(t, 1, calls)

	store.Reload()
	assert.Equal(t, 1, calls)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestExpiredTokenReadsAsLoggedOut(t *testing.T) {
	kv := memory.NewKV()
	store := typed.NewSessionStore(kv)

	require.NoError(t, store.Set(core.Session{Name: "alice", Token: signed(t, time.Now().Add(time.Hour))}))
	assert.NotNil(t, store.Load())

	require.NoError(t, kv.Set(typed.SessionKey,
		[]byte(`{"name":"alice","token":"`+signed(t, time.Now().Add(-time.Minute))+`"}`)))
	assert.Nil(t, store.Load())

	require.NoError(t, kv.Set(typed.SessionKey, []byte(`{"name":"alice","token":"opaque-token"}`)))
	assert.NotNil(t, store.Load(), "opaque tokens are left to the backend")
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	got, ok := typed.TokenExpiry(signed(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = typed.TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}

func TestPreferences(t *testing.T) {
	kv := memory.NewKV()
	prefs := typed.NewPreferencesStore(kv)
	assert.Equal(t, core.ThemeSystem, prefs.Theme())

	for _, want := range []core.Theme{core.ThemeLight, core.ThemeDark, core.ThemeSystem, core.ThemeLight} {
		got, err := prefs.Cycle()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, kv.Set(typed.ThemeKey, []byte(`"neon"`)))
	assert.Equal(t, core.ThemeSystem, prefs.Theme(), "unknown themes fall back to system")
}
