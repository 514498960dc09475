package domain

// PlayQueue is the engine-side FIFO of sources. Entry 0 is the active one and
// the rest are pending in play order.
type PlayQueue[T any] struct {
	entries []T
}

// Len returns the number of entries, including the active one.
func (q *PlayQueue[T]) Len() int {
	return len(q.entries)
}

// IsEmpty returns true if nothing is active or pending.
func (q *PlayQueue[T]) IsEmpty() bool {
	return len(q.entries) == 0
}

// Front returns the active entry.
func (q *PlayQueue[T]) Front() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}
	return q.entries[0], true
}

// At returns the entry at index i.
func (q *PlayQueue[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(q.entries) {
		return zero, false
	}
	return q.entries[i], true
}

// PushBack appends an entry after every pending one.
func (q *PlayQueue[T]) PushBack(v T) {
	q.entries = append(q.entries, v)
}

// PopBack removes and returns the last entry.
func (q *PlayQueue[T]) PopBack() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}
	last := len(q.entries) - 1
	v := q.entries[last]
	q.entries[last] = zero
	q.entries = q.entries[:last]
	return v, true
}

// PopFront removes and returns the active entry.
func (q *PlayQueue[T]) PopFront() (T, bool) {
	var zero T
	if q.IsEmpty() {
		return zero, false
	}
	v := q.entries[0]
	q.entries[0] = zero
	q.entries = q.entries[1:]
	return v, true
}

// Insert places v at index i, shifting later entries back.
// Indices past the end append.
func (q *PlayQueue[T]) Insert(i int, v T) {
	if i >= len(q.entries) {
		q.entries = append(q.entries, v)
		return
	}
	i = max(i, 0)
	q.entries = append(q.entries, v)
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = v
}

// Remove deletes and returns the entry at index i.
func (q *PlayQueue[T]) Remove(i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(q.entries) {
		return zero, false
	}
	v := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return v, true
}

// RotateTailToFront pops the last n entries and reinserts them, order preserved,
// right after the active entry.
func (q *PlayQueue[T]) RotateTailToFront(n int) {
	if n <= 0 || len(q.entries) <= n {
		return
	}
	tail := make([]T, 0, n)
	for range n {
		v, _ := q.PopBack()
		tail = append(tail, v)
	}
	for _, v := range tail {
		q.Insert(1, v)
	}
}

// Entries returns a copy of all entries in play order.
func (q *PlayQueue[T]) Entries() []T {
	result := make([]T, len(q.entries))
	copy(result, q.entries)
	return result
}

// Clear removes every entry.
func (q *PlayQueue[T]) Clear() {
	q.entries = nil
}
