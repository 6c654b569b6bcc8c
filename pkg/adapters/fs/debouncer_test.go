package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/cleverpad/pkg/core"
)

func TestDebouncerCoalescesPerKey(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var got []core.Event
	deliver := func(e core.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}

	d.add(core.Event{Type: core.EventCreate, Key: "user"}, deliver)
	d.add(core.Event{Type: core.EventModify, Key: "user"}, deliver)
	d.add(core.Event{Type: core.EventModify, Key: "theme"}, deliver)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	d.stopAndWait(time.Second)

	mu.Lock()
	defer mu.Unlock()
	byKey := map[string]core.EventType{}
	for _, e := range got {
		byKey[e.Key] = e.Type
	}
	assert.Equal(t, core.EventCreate, byKey["user"], "create followed by modify stays a create")
	assert.Equal(t, core.EventModify, byKey["theme"])
}

func TestDebouncerDropsAfterStop(t *testing.T) {
	d := newDebouncer(5 * time.Millisecond)
	d.stopAndWait(time.Second)

	called := make(chan struct{}, 1)
	d.add(core.Event{Key: "user"}, func(core.Event) { called <- struct{}{} })

	select {
	case <-called:
		t.Fatal("event delivered after stop")
	case <-time.After(30 * time.Millisecond):
	}
}
