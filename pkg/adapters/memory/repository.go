// Package memory provides process-local adapters: the guest note repository
// and a volatile key/value store.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/cleverpad/pkg/core"
)

// IDGenerator produces note identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered UUIDv7 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the time source for note timestamps.
func WithClock(c core.Clock) Option {
	return func(r *Repository) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithIDGenerator sets the identifier source.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Repository) {
		if g != nil {
			r.ids = g
		}
	}
}

// Repository keeps guest notes in memory, most recent first.
// Nothing survives the process.
type Repository struct {
	mu    sync.RWMutex
	notes []core.Note
	clock core.Clock
	ids   IDGenerator
}

// NewRepository creates an empty guest repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		clock: core.RealClock{},
		ids:   UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Note, len(r.notes))
	copy(out, r.notes)
	return out, nil
}

func (r *Repository) Create(ctx context.Context, title, content string) (core.Note, error) {
	now := r.clock.Now()
	n := core.Note{
		ID:        r.ids.NewID(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append([]core.Note{n}, r.notes...)
	return n, nil
}

func (r *Repository) Update(ctx context.Context, id, title, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes[i].Title = title
			r.notes[i].Content = content
			r.notes[i].UpdatedAt = r.clock.Now()
			return nil
		}
	}
	return fmt.Errorf("failed to update note %s: %w", id, core.ErrNotFound)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return nil
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "guest-repository"
}
