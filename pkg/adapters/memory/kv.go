package memory

import (
	"sync"

	"github.com/aretw0/cleverpad/pkg/core"
)

// KV is a volatile core.KeyValue, used when local state must not touch disk.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV creates an empty store.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (k *KV) Get(key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.data[key]
	if !ok {
		return nil, core.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *KV) Set(key string, data []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.data[key] = append([]byte(nil), data...)
	return nil
}

func (k *KV) Remove(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.data, key)
	return nil
}
