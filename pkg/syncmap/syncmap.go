// Package syncmap provides a small typed map safe for concurrent use.
package syncmap

import "sync"

type Map[K comparable, V any] struct {
	mut  sync.RWMutex
	data map[K]V
}

func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

func (m *Map[K, V]) Put(key K, val V) {
	m.mut.Lock()
	m.data[key] = val
	m.mut.Unlock()
}

// PutIfAbsent stores val under key only when the key is free and
// reports whether it did.
func (m *Map[K, V]) PutIfAbsent(key K, val V) bool {
	m.mut.Lock()
	defer m.mut.Unlock()
	if _, exists := m.data[key]; exists {
		return false
	}
	m.data[key] = val
	return true
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mut.RLock()
	val, exists := m.data[key]
	m.mut.RUnlock()

	return val, exists
}

func (m *Map[K, V]) Delete(keys ...K) {
	m.mut.Lock()
	for _, key := range keys {
		delete(m.data, key)
	}
	m.mut.Unlock()
}

func (m *Map[K, V]) Len() int {
	m.mut.RLock()
	defer m.mut.RUnlock()
	return len(m.data)
}

func (m *Map[K, V]) Keys() []K {
	m.mut.RLock()
	defer m.mut.RUnlock()
	keys := make([]K, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys
}
