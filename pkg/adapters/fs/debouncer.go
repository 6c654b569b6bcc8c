package fs

import (
	"sync"
	"time"

	"github.com/aretw0/cleverpad/pkg/core"
)

// debouncer coalesces events per key: only the last event of a burst is
// delivered, d after the burst went quiet.
type debouncer struct {
	d time.Duration

	mu      sync.Mutex
	pending map[string]*debounced
	stopped bool
	running sync.WaitGroup
}

type debounced struct {
	timer *time.Timer
	event core.Event
}

func newDebouncer(d time.Duration) *debouncer {
	return &debouncer{d: d, pending: make(map[string]*debounced)}
}

// add schedules fn for event, replacing any pending event of the same key.
func (b *debouncer) add(event core.Event, fn func(core.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}

	if p, ok := b.pending[event.Key]; ok {
		p.event = mergeEvent(p.event, event)
		p.timer.Reset(b.d)
		return
	}

	p := &debounced{event: event}
	key := event.Key
	p.timer = time.AfterFunc(b.d, func() {
		b.mu.Lock()
		if b.stopped || b.pending[key] != p {
			b.mu.Unlock()
			return
		}
		delete(b.pending, key)
		e := p.event
		b.running.Add(1)
		b.mu.Unlock()

		defer b.running.Done()
		fn(e)
	})
	b.pending[key] = p
}

// stopAndWait drops pending events and waits up to timeout for deliveries
// already in progress.
func (b *debouncer) stopAndWait(timeout time.Duration) {
	b.mu.Lock()
	b.stopped = true
	for key, p := range b.pending {
		p.timer.Stop()
		delete(b.pending, key)
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.running.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}

// mergeEvent keeps the latest timestamp. A create followed by modifications
// is still a create; anything ending in a delete is a delete.
func mergeEvent(prev, next core.Event) core.Event {
	if prev.Type == core.EventCreate && next.Type == core.EventModify {
		next.Type = core.EventCreate
	}
	return next
}
