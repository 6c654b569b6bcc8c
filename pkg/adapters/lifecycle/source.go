// Package lifecycle exposes state changes as a lifecycle.Source.
package lifecycle

import (
	"context"
	"slices"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/cleverpad/pkg/core"
)

type stateSource struct {
	events <-chan core.Event
	keys   []string
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source re-emitting state change events. With
// keys, only changes to those state keys (e.g. "user", "theme") pass.
func NewSource(events <-chan core.Event, keys ...string) lifecycle.Source {
	return &stateSource{
		events: events,
		keys:   keys,
		out:    make(chan lifecycle.Event),
	}
}

func (s *stateSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *stateSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if len(s.keys) > 0 && !slices.Contains(s.keys, e.Key) {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
