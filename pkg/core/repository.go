package core

import "context"

// Repository defines the contract for storing and retrieving notes.
// The remote adapter talks to the REST backend; the memory adapter keeps
// guest notes in the process.
type Repository interface {
	// List returns all notes, most recent first.
	List(ctx context.Context) ([]Note, error)

	// Create stores a new note and returns it with its assigned ID.
	Create(ctx context.Context, title, content string) (Note, error)

	// Update replaces title and content of an existing note.
	// Unknown IDs yield an error matching ErrNotFound.
	Update(ctx context.Context, id, title, content string) error

	// Delete removes a note. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

// RepositoryFactory builds the repository backing a session.
type RepositoryFactory func(s Session) (Repository, error)

// KeyValue is a small durable byte store addressed by fixed keys.
type KeyValue interface {
	// Get returns the stored bytes. A missing key yields ErrNotFound.
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}

// Watchable is implemented by key/value stores that can report changes
// made by other processes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// SessionStore persists the current session.
// Load never fails: anything unreadable is reported as no session.
type SessionStore interface {
	Load() *Session
	Set(s Session) error
	Clear() error
	Subscribe(fn func(*Session)) (cancel func())
}
