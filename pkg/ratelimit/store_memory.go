package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a thread-safe in-memory implementation of Store.
//
// Each key holds the timestamps of its recorded requests in arrival order.
// Besides lazy pruning, the number of keys is capped by MaxKeys; when a new
// key arrives at capacity, the least recently used tenth of the keys is
// evicted.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	maxKeys int
	lruList *lruList
	onEvict func(count int)
}

// InMemoryStoreConfig holds configuration for InMemoryStore.
type InMemoryStoreConfig struct {
	// MaxKeys is the maximum number of subjects tracked at once.
	// Default: 10000
	MaxKeys int

	// OnEvict is called with the number of keys dropped by an LRU eviction.
	OnEvict func(count int)
}

// NewInMemoryStore creates a new in-memory store with the given configuration.
func NewInMemoryStore(config InMemoryStoreConfig) *InMemoryStore {
	if config.MaxKeys <= 0 {
		config.MaxKeys = 10000
	}
	return &InMemoryStore{
		windows: make(map[string][]time.Time),
		maxKeys: config.MaxKeys,
		lruList: newLRUList(),
		onEvict: config.OnEvict,
	}
}

// CheckAndAdd implements Store.
func (s *InMemoryStore) CheckAndAdd(ctx context.Context, key string, timestamp, cutoff time.Time, limit int) (bool, int, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, time.Time{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.pruneLocked(key, cutoff)
	if len(window) >= limit {
		return false, len(window), oldestOf(window), nil
	}

	if _, exists := s.windows[key]; !exists && len(s.windows) >= s.maxKeys {
		s.evictLRU()
	}

	window = append(window, timestamp)
	s.windows[key] = window
	s.lruList.touch(key)

	return true, len(window), oldestOf(window), nil
}

// Count implements Store.
func (s *InMemoryStore) Count(ctx context.Context, key string, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pruneLocked(key, cutoff)), nil
}

// KeyCount implements Store.
func (s *InMemoryStore) KeyCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.windows), nil
}

// Cleanup prunes every window to timestamps after cutoff and returns how
// many keys were dropped. It catches subjects that are never looked up again.
func (s *InMemoryStore) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.windows)
	for key := range s.windows {
		s.pruneLocked(key, cutoff)
	}
	return before - len(s.windows), nil
}

// pruneLocked drops timestamps at or before cutoff from key's window and
// deletes the key once nothing is left. Timestamps are appended in order, so
// the first one after cutoff marks the start of the live window.
func (s *InMemoryStore) pruneLocked(key string, cutoff time.Time) []time.Time {
	window, exists := s.windows[key]
	if !exists {
		return nil
	}

	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	if i == len(window) {
		delete(s.windows, key)
		s.lruList.remove(key)
		return nil
	}
	if i > 0 {
		window = append(window[:0:0], window[i:]...)
		s.windows[key] = window
	}
	return window
}

// evictLRU evicts 10% of the keys, least recently used first.
//
// This method must be called while holding the lock.
func (s *InMemoryStore) evictLRU() {
	evictCount := s.maxKeys / 10
	if evictCount < 1 {
		evictCount = 1
	}

	evicted := 0
	for evicted < evictCount && s.lruList.tail != nil {
		key := s.lruList.tail.key
		delete(s.windows, key)
		s.lruList.remove(key)
		evicted++
	}
	if s.onEvict != nil && evicted > 0 {
		s.onEvict(evicted)
	}
}

func oldestOf(window []time.Time) time.Time {
	if len(window) == 0 {
		return time.Time{}
	}
	return window[0]
}

// lruList maintains a doubly-linked list of keys ordered by last access time.
type lruList struct {
	head *lruNode
	tail *lruNode
	keys map[string]*lruNode
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

func newLRUList() *lruList {
	return &lruList{keys: make(map[string]*lruNode)}
}

// touch moves key to the front of the list, inserting it if needed.
func (l *lruList) touch(key string) {
	if _, exists := l.keys[key]; exists {
		l.remove(key)
	}

	node := &lruNode{key: key, next: l.head}
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.keys[key] = node
}

func (l *lruList) remove(key string) {
	node, exists := l.keys[key]
	if !exists {
		return
	}

	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}

	delete(l.keys, key)
}
