// Package typed provides JSON-encoded, type-safe values on top of a
// core.KeyValue with change notification.
package typed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/aretw0/cleverpad/pkg/core"
)

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithValidator rejects values on load and on set. A stored value that fails
// validation reads as absent.
func WithValidator[T any](fn func(T) error) Option[T] {
	return func(s *Store[T]) {
		s.validate = fn
	}
}

// WithLogger sets the logger used to report unreadable stored values.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(s *Store[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is one JSON value of type T persisted under a fixed key.
// Loading never fails: a missing, malformed or invalid value reads as nil.
type Store[T any] struct {
	kv       core.KeyValue
	key      string
	validate func(T) error
	logger   *zap.Logger

	mu        sync.Mutex
	last      *T
	listeners map[int]func(*T)
	nextID    int
}

// NewStore binds a typed value to key in kv.
func NewStore[T any](kv core.KeyValue, key string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		kv:        kv,
		key:       key,
		logger:    zap.NewNop(),
		listeners: make(map[int]func(*T)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store[T]) Key() string { return s.key }

// Load reads the persisted value.
func (s *Store[T]) Load() *T {
	v := s.read()
	s.mu.Lock()
	s.last = v
	s.mu.Unlock()
	return v
}

func (s *Store[T]) read() *T {
	data, err := s.kv.Get(s.key)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Warn("stored value unreadable, treating as absent",
				zap.String("key", s.key), zap.Error(err))
		}
		return nil
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		s.logger.Warn("stored value malformed, treating as absent",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}
	if s.validate != nil {
		if err := s.validate(v); err != nil {
			s.logger.Warn("stored value rejected, treating as absent",
				zap.String("key", s.key), zap.Error(err))
			return nil
		}
	}
	return &v
}

// Set validates, persists and publishes v.
func (s *Store[T]) Set(v T) error {
	if s.validate != nil {
		if err := s.validate(v); err != nil {
			return fmt.Errorf("invalid %s: %w", s.key, err)
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.key, err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", s.key, err)
	}
	s.publish(&v)
	return nil
}

// Clear removes the persisted value and publishes nil.
func (s *Store[T]) Clear() error {
	if err := s.kv.Remove(s.key); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.key, err)
	}
	s.publish(nil)
	return nil
}

// Reload re-reads the durable value after an external change and publishes
// it if it differs from what was last seen.
func (s *Store[T]) Reload() *T {
	v := s.read()
	s.mu.Lock()
	same := reflect.DeepEqual(s.last, v)
	s.mu.Unlock()
	if !same {
		s.publish(v)
	}
	return v
}

// Subscribe registers fn for every published value.
func (s *Store[T]) Subscribe(fn func(*T)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store[T]) publish(v *T) {
	s.mu.Lock()
	s.last = v
	fns := make([]func(*T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		var cp *T
		if v != nil {
			c := *v
			cp = &c
		}
		fn(cp)
	}
}
