// Package visited tracks the point indices already considered during one
// neighborhood-expansion pass.
//
// The set is a sorted slice with binary-search insert rather than a hash
// map or bitset: expected sizes are small (on the order of K² per point per
// iteration), memory locality dominates, and the sorted representation
// keeps lookups logarithmic in the live size; an insert finds its slot by
// binary search and then shifts the tail of the slice. Workers hold
// one Set and re-Seed it per point, so the backing storage is reused for
// the whole iteration.
package visited

import "slices"

// Set is a sorted set of point indices.
type Set struct {
	items []int32
}

// New creates an empty set with the given capacity hint.
func New(capacity int) *Set {
	return &Set{items: make([]int32, 0, capacity)}
}

// Seed resets the set to exactly the values in seed, which may be unsorted
// and contain duplicates. seed is copied, never mutated.
func (s *Set) Seed(seed []int32) {
	s.items = append(s.items[:0], seed...)
	slices.Sort(s.items)
	s.items = slices.Compact(s.items)
}

// Insert adds x to the set, maintaining sorted order. It returns false if x
// was already present.
func (s *Set) Insert(x int32) bool {
	i, found := slices.BinarySearch(s.items, x)
	if found {
		return false
	}
	s.items = append(s.items, 0)
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = x
	return true
}

// Len returns the number of indices in the set.
func (s *Set) Len() int { return len(s.items) }
