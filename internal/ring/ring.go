// Package ring provides a fixed-capacity buffer that evicts its oldest entry
// on overflow. It backs relationship history, gossip, learned behaviors, and
// temporary beliefs.
package ring

// Buffer keeps at most cap entries, oldest first.
type Buffer[T comparable] struct {
	items    []T
	capacity int
}

// New returns a Buffer holding at most capacity entries. Capacity must be
// positive.
func New[T comparable](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer[T]{capacity: capacity}
}

// FromSlice builds a Buffer pre-filled with items, keeping only the newest
// capacity entries.
func FromSlice[T comparable](capacity int, items []T) *Buffer[T] {
	b := New[T](capacity)
	for _, item := range items {
		b.Push(item)
	}
	return b
}

// Push appends an entry, evicting the oldest when full.
func (b *Buffer[T]) Push(item T) {
	b.items = append(b.items, item)
	if len(b.items) > b.capacity {
		b.items = b.items[len(b.items)-b.capacity:]
	}
}

// PushUnique appends an entry unless it is already present. Returns true if
// the entry was added.
func (b *Buffer[T]) PushUnique(item T) bool {
	if b.Contains(item) {
		return false
	}
	b.Push(item)
	return true
}

// Contains reports whether item is currently buffered.
func (b *Buffer[T]) Contains(item T) bool {
	for _, existing := range b.items {
		if existing == item {
			return true
		}
	}
	return false
}

// Items returns a copy of the buffered entries, oldest first.
func (b *Buffer[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Newest returns up to n of the most recent entries, oldest first.
func (b *Buffer[T]) Newest(n int) []T {
	if n <= 0 || len(b.items) == 0 {
		return nil
	}
	if n > len(b.items) {
		n = len(b.items)
	}
	out := make([]T, n)
	copy(out, b.items[len(b.items)-n:])
	return out
}

// Len returns the number of buffered entries.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}
