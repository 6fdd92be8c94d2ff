package syncmap

import (
	"sync"
)

// Map is a regular map but synchronized with a mutex.
type Map[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// New returns a new syncmap.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// LoadOrStore returns the existing value for a key if present.
// Otherwise, it stores and returns the result of calling mk.
// The loaded result is true if the value was already present.
// mk is called with the map locked, so it must not use the map.
func (m *Map[K, V]) LoadOrStore(key K, mk func() V) (actual V, loaded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.m[key]; ok {
		return v, true
	}
	v := mk()
	m.m[key] = v
	return v, false
}

// Delete deletes a key.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
}

// Len returns the number of elements in the map.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}
