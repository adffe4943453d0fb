// Package attrset provides a fixed universe of distinct items and bit-vector
// subsets over it.
//
// A Subset is cheap to mutate in place and produces a comparable Key, so an
// unordered collection of items can be used as a map key in O(1) without
// sorting. Subsets are bound to the Universe that created them: two subsets
// built from separately constructed universes never compare equal, even if
// the universes hold the same items.
package attrset

import (
	"errors"
	"iter"
	"math/bits"
	"sync/atomic"
)

var (
	// ErrNotMember is returned when an item is not part of the universe.
	ErrNotMember = errors.New("attrset: item is not a member of the universe")
	// ErrMismatchedUniverse is returned when two subsets belong to different universes.
	ErrMismatchedUniverse = errors.New("attrset: subsets belong to different universes")
)

var nextUniverseID atomic.Uint64

// Universe is an immutable, deduplicated set of items with dense indices.
type Universe[T comparable] struct {
	id    uint64
	index map[T]int
	items []T
}

// New builds a universe from items. Duplicates are dropped; the first
// occurrence decides the index.
func New[T comparable](items []T) *Universe[T] {
	return NewWithCapacity(items, len(items))
}

// NewWithCapacity is New with a size hint for the index.
func NewWithCapacity[T comparable](items []T, capacity int) *Universe[T] {
	if capacity < len(items) {
		capacity = len(items)
	}
	u := &Universe[T]{
		id:    nextUniverseID.Add(1),
		index: make(map[T]int, capacity),
		items: make([]T, 0, capacity),
	}
	for _, it := range items {
		if _, ok := u.index[it]; ok {
			continue
		}
		u.index[it] = len(u.items)
		u.items = append(u.items, it)
	}
	return u
}

// ID returns the process-unique identity of the universe.
func (u *Universe[T]) ID() uint64 { return u.id }

// Len returns the number of distinct items.
func (u *Universe[T]) Len() int { return len(u.items) }

// Contains reports whether item is a member.
func (u *Universe[T]) Contains(item T) bool {
	_, ok := u.index[item]
	return ok
}

// Items returns a copy of all members in index order.
func (u *Universe[T]) Items() []T {
	out := make([]T, len(u.items))
	copy(out, u.items)
	return out
}

// EmptySubset returns a subset with no bits set.
func (u *Universe[T]) EmptySubset() *Subset[T] {
	return &Subset[T]{u: u, words: make([]uint64, (len(u.items)+63)/64)}
}

// SubsetWith returns a subset holding the given items. Non-members are
// silently dropped.
func (u *Universe[T]) SubsetWith(items ...T) *Subset[T] {
	s := u.EmptySubset()
	for _, it := range items {
		_ = s.TryInsert(it)
	}
	return s
}

// SubsetFrom is SubsetWith over a sequence.
func (u *Universe[T]) SubsetFrom(seq iter.Seq[T]) *Subset[T] {
	s := u.EmptySubset()
	for it := range seq {
		_ = s.TryInsert(it)
	}
	return s
}

// Key is the comparable identity of a Subset: the universe id plus the bits.
// Two keys are equal iff the subsets are Equal.
type Key struct {
	universe uint64
	bits     string
}

// Subset is a mutable bit vector over a Universe.
type Subset[T comparable] struct {
	u     *Universe[T]
	words []uint64
}

// Universe returns the universe the subset is bound to.
func (s *Subset[T]) Universe() *Universe[T] { return s.u }

// TryInsert sets the bit for item. It fails with ErrNotMember when item is
// not in the universe and leaves the subset unchanged.
func (s *Subset[T]) TryInsert(item T) error {
	i, ok := s.u.index[item]
	if !ok {
		return ErrNotMember
	}
	s.words[i/64] |= 1 << (uint(i) % 64)
	return nil
}

// Remove clears the bit for item. Removing a non-member is a no-op.
func (s *Subset[T]) Remove(item T) {
	i, ok := s.u.index[item]
	if !ok {
		return
	}
	s.words[i/64] &^= 1 << (uint(i) % 64)
}

// Contains reports whether item's bit is set.
func (s *Subset[T]) Contains(item T) bool {
	i, ok := s.u.index[item]
	if !ok {
		return false
	}
	return s.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Clear zeroes every bit.
func (s *Subset[T]) Clear() {
	clear(s.words)
}

// Len returns the number of set bits.
func (s *Subset[T]) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Items yields the members whose bits are set, in index order.
func (s *Subset[T]) Items() iter.Seq[T] {
	return func(yield func(T) bool) {
		for wi, w := range s.words {
			for w != 0 {
				b := bits.TrailingZeros64(w)
				if !yield(s.u.items[wi*64+b]) {
					return
				}
				w &^= 1 << uint(b)
			}
		}
	}
}

// CopyFrom overwrites s with the bits of other. Both subsets must come from
// the same universe.
func (s *Subset[T]) CopyFrom(other *Subset[T]) error {
	if s.u.id != other.u.id {
		return ErrMismatchedUniverse
	}
	copy(s.words, other.words)
	return nil
}

// Clone returns an independent copy bound to the same universe.
func (s *Subset[T]) Clone() *Subset[T] {
	c := &Subset[T]{u: s.u, words: make([]uint64, len(s.words))}
	copy(c.words, s.words)
	return c
}

// Equal reports whether both subsets share a universe and have identical bits.
func (s *Subset[T]) Equal(other *Subset[T]) bool {
	if s.u.id != other.u.id {
		return false
	}
	for i, w := range s.words {
		if other.words[i] != w {
			return false
		}
	}
	return true
}

// Key returns the comparable identity of the subset's current contents.
func (s *Subset[T]) Key() Key {
	b := make([]byte, len(s.words)*8)
	for i, w := range s.words {
		for j := 0; j < 8; j++ {
			b[i*8+j] = byte(w >> (8 * j))
		}
	}
	return Key{universe: s.u.id, bits: string(b)}
}
