package l1lattice

import (
	"sort"
	"sync"
)

// Index is the set of occupied lattice cells. It only grows.
//
// TryOccupy is serialised by a mutex so that at most one caller ever wins a
// given key, even when the index is shared between goroutines.
type Index struct {
	mu       sync.Mutex
	occupied map[Key]struct{}
}

// NewIndex returns an empty occupancy index.
func NewIndex() *Index {
	return &Index{occupied: make(map[Key]struct{})}
}

// TryOccupy records k and returns true if it was absent. It returns false,
// leaving the index unchanged, if k is already occupied.
func (ix *Index) TryOccupy(k Key) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.occupied[k]; ok {
		return false
	}
	ix.occupied[k] = struct{}{}
	return true
}

// Contains reports whether k has been occupied.
func (ix *Index) Contains(k Key) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, ok := ix.occupied[k]
	return ok
}

// Len returns the number of occupied cells.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.occupied)
}

// Keys returns a sorted snapshot of the occupied cells.
func (ix *Index) Keys() []Key {
	ix.mu.Lock()
	keys := make([]Key, 0, len(ix.occupied))
	for k := range ix.occupied {
		keys = append(keys, k)
	}
	ix.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
