// Package core holds the note domain: notes, sessions, the repository contract,
// the draft/autosave controller and the workspace service that ties them together.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Note is the central entity of the domain.
// Content is an opaque HTML fragment produced by the editor.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// GuestName is the display name of the local-only session.
const GuestName = "Guest"

// Mode describes which repository a session is backed by.
type Mode string

const (
	ModeLoggedOut Mode = "logged_out"
	ModeGuest     Mode = "guest"
	ModeRemote    Mode = "remote"
)

// Session identifies who is using the workspace.
// A session with a token talks to the backend; a token-less "Guest" session
// keeps notes in process memory only.
type Session struct {
	UserID string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Token  string `json:"token,omitempty"`
}

// GuestSession returns the local-only session.
func GuestSession() Session {
	return Session{Name: GuestName}
}

// Mode reports the repository mode for s. A nil session is logged out.
func (s *Session) Mode() Mode {
	switch {
	case s == nil:
		return ModeLoggedOut
	case s.Token != "":
		return ModeRemote
	case s.Name == GuestName:
		return ModeGuest
	default:
		return ModeLoggedOut
	}
}

// IsGuest reports whether s is the local-only session.
func (s *Session) IsGuest() bool {
	return s.Mode() == ModeGuest
}

// SameAs reports whether two sessions address the same repository.
func (s *Session) SameAs(other *Session) bool {
	if s == nil || other == nil {
		return s == nil && other == nil
	}
	return s.Mode() == other.Mode() && s.Token == other.Token && s.Name == other.Name
}

// Theme is the persisted display preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DefaultTheme is used when nothing valid is persisted.
const DefaultTheme = ThemeSystem

// Next returns the theme that follows t in the light, dark, system cycle.
func (t Theme) Next() Theme {
	switch t {
	case ThemeLight:
		return ThemeDark
	case ThemeDark:
		return ThemeSystem
	default:
		return ThemeLight
	}
}

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// ParseTheme converts user input into a Theme.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
	}
	return t, nil
}

// Preferences is the persisted user interface state.
type Preferences struct {
	Theme Theme `json:"theme"`
}

// EventType represents the type of change in persisted local state.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a persisted key (e.g. "user", "theme").
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}
