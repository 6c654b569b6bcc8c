package typed

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aretw0/cleverpad/pkg/core"
)

const (
	// SessionKey is the fixed key of the persisted session.
	SessionKey = "user"
	// ThemeKey is the fixed key of the persisted theme.
	ThemeKey = "theme"
)

// SessionStore persists the current core.Session under SessionKey.
type SessionStore struct {
	*Store[core.Session]
}

// NewSessionStore creates the session store. Stored sessions without a name
// or with an expired token read as logged out.
func NewSessionStore(kv core.KeyValue, opts ...Option[core.Session]) *SessionStore {
	all := append([]Option[core.Session]{WithValidator(ValidateSession(time.Now))}, opts...)
	return &SessionStore{Store: NewStore(kv, SessionKey, all...)}
}

var _ core.SessionStore = (*SessionStore)(nil)

// ValidateSession returns a validator checking that a session has a name and
// that its token, when it is a JWT carrying exp, has not expired.
func ValidateSession(now func() time.Time) func(core.Session) error {
	return func(s core.Session) error {
		if s.Name == "" {
			return errors.New("session has no name")
		}
		if s.Token == "" {
			return nil
		}
		exp, ok := TokenExpiry(s.Token)
		if ok && !now().Before(exp) {
			return fmt.Errorf("session token expired at %s", exp.Format(time.RFC3339))
		}
		return nil
	}
}

// TokenExpiry extracts the exp claim of a JWT without verifying its
// signature; the backend remains the authority on validity. Opaque tokens
// report ok=false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// PreferencesStore persists the theme under ThemeKey.
type PreferencesStore struct {
	*Store[core.Theme]
}

// NewPreferencesStore creates the preferences store.
func NewPreferencesStore(kv core.KeyValue, opts ...Option[core.Theme]) *PreferencesStore {
	all := append([]Option[core.Theme]{WithValidator(func(t core.Theme) error {
		if !t.Valid() {
			return fmt.Errorf("unknown theme %q", t)
		}
		return nil
	})}, opts...)
	return &PreferencesStore{Store: NewStore(kv, ThemeKey, all...)}
}

// Theme returns the persisted theme or core.DefaultTheme.
func (p *PreferencesStore) Theme() core.Theme {
	if t := p.Load(); t != nil {
		return *t
	}
	return core.DefaultTheme
}

// Cycle advances light, dark, system and persists the result.
func (p *PreferencesStore) Cycle() (core.Theme, error) {
	next := p.Theme().Next()
	return next, p.Set(next)
}
