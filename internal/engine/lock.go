package engine

import (
	"slices"
	"strings"
	"sync"

	"github.com/iudanet/fleetsync/internal/models"
)

// keyedMutex serializes work per entity. Entries are dropped once unused.
type keyedMutex struct {
	locks map[models.EntityKey]*refLock
	mu    sync.Mutex
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[models.EntityKey]*refLock)}
}

func (k *keyedMutex) lock(key models.EntityKey) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

func (k *keyedMutex) unlock(key models.EntityKey) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l := k.locks[key]
	l.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

// lockAll acquires every distinct key in sorted order and returns the release func.
func (k *keyedMutex) lockAll(keys []models.EntityKey) func() {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b models.EntityKey) int {
		if c := strings.Compare(a.EntityType, b.EntityType); c != 0 {
			return c
		}
		return strings.Compare(a.EntityID, b.EntityID)
	})
	sorted = slices.Compact(sorted)

	for _, key := range sorted {
		k.lock(key)
	}
	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			k.unlock(sorted[i])
		}
	}
}

// size returns the number of keys currently held or awaited.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
