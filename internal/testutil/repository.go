package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/cleverpad/pkg/core"
)

// UpdateCall records one Repository.Update invocation.
type UpdateCall struct {
	ID      string
	Title   string
	Content string
}

// MockRepository is a scriptable core.Repository. Update can be made to fail
// or to block until released, which lets tests hold a save "in flight".
type MockRepository struct {
	mu      sync.Mutex
	notes   []core.Note
	next    int
	updates []UpdateCall
	lists   int

	// UpdateErr, when set, is returned by every Update call.
	UpdateErr error
	// ListErr, when set, is returned by every List call.
	ListErr error

	gate    chan struct{}
	started chan UpdateCall
}

// NewMockRepository returns a repository holding notes in the given order.
func NewMockRepository(notes ...core.Note) *MockRepository {
	return &MockRepository{notes: append([]core.Note(nil), notes...), next: 100}
}

// Block makes subsequent Update calls wait until Release is called. Each
// blocked call is announced on the returned channel.
func (m *MockRepository) Block() <-chan UpdateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
	m.started = make(chan UpdateCall, 16)
	return m.started
}

// Release unblocks every waiting Update call.
func (m *MockRepository) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

func (m *MockRepository) List(ctx context.Context) ([]core.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]core.Note(nil), m.notes...), nil
}

func (m *MockRepository) Create(ctx context.Context, title, content string) (core.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	n := core.Note{ID: strconv.Itoa(m.next), Title: title, Content: content, CreatedAt: time.Unix(int64(m.next), 0)}
	m.notes = append([]core.Note{n}, m.notes...)
	return n, nil
}

func (m *MockRepository) Update(ctx context.Context, id, title, content string) error {
	call := UpdateCall{ID: id, Title: title, Content: content}

	m.mu.Lock()
	gate, started := m.gate, m.started
	m.mu.Unlock()
	if gate != nil {
		started <- call
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, call)
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i := range m.notes {
		if m.notes[i].ID == id {
			m.notes[i].Title = title
			m.notes[i].Content = content
			return nil
		}
	}
	return fmt.Errorf("update %s: %w", id, core.ErrNotFound)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notes {
		if m.notes[i].ID == id {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			return nil
		}
	}
	return nil
}

// Updates returns the recorded Update calls.
func (m *MockRepository) Updates() []UpdateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UpdateCall(nil), m.updates...)
}

// Lists returns how many times List was called.
func (m *MockRepository) Lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

// SetUpdateErr changes the Update failure under lock.
func (m *MockRepository) SetUpdateErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateErr = err
}
