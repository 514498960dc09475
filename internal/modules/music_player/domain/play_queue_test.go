package domain

import (
	"slices"
	"testing"
)

func playQueueOf(values ...string) *PlayQueue[string] {
	q := &PlayQueue[string]{}
	for _, v := range values {
		q.PushBack(v)
	}
	return q
}

func TestPlayQueue_PushPop(t *testing.T) {
	q := playQueueOf("a", "b", "c")

	if front, ok := q.Front(); !ok || front != "a" {
		t.Errorf("expected front a, got %q", front)
	}
	if back, ok := q.PopBack(); !ok || back != "c" {
		t.Errorf("expected PopBack c, got %q", back)
	}
	if front, ok := q.PopFront(); !ok || front != "a" {
		t.Errorf("expected PopFront a, got %q", front)
	}
	if got := q.Entries(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("unexpected entries %v", got)
	}

	q.Clear()
	if _, ok := q.PopFront(); ok {
		t.Error("expected PopFront on empty queue to fail")
	}
	if _, ok := q.PopBack(); ok {
		t.Error("expected PopBack on empty queue to fail")
	}
}

func TestPlayQueue_Insert(t *testing.T) {
	q := playQueueOf("a", "c")
	q.Insert(1, "b")
	q.Insert(10, "d")

	if got := q.Entries(); !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("unexpected entries %v", got)
	}
}

func TestPlayQueue_RotateTailToFront(t *testing.T) {
	tests := []struct {
		name     string
		entries  []string
		n        int
		expected []string
	}{
		{
			name:     "previous and current",
			entries:  []string{"active", "next", "later", "prev", "cur"},
			n:        2,
			expected: []string{"active", "prev", "cur", "next", "later"},
		},
		{
			name:     "current only",
			entries:  []string{"active", "next", "cur"},
			n:        1,
			expected: []string{"active", "cur", "next"},
		},
		{
			name:     "nothing pending",
			entries:  []string{"active", "prev", "cur"},
			n:        2,
			expected: []string{"active", "prev", "cur"},
		},
		{
			name:     "n too large is a no-op",
			entries:  []string{"a", "b"},
			n:        2,
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := playQueueOf(tt.entries...)
			q.RotateTailToFront(tt.n)
			if got := q.Entries(); !slices.Equal(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPlayQueue_Remove(t *testing.T) {
	q := playQueueOf("a", "b", "c")

	if v, ok := q.Remove(1); !ok || v != "b" {
		t.Errorf("expected to remove b, got %q", v)
	}
	if _, ok := q.Remove(5); ok {
		t.Error("expected out of range remove to fail")
	}
	if got := q.Entries(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("unexpected entries %v", got)
	}
}
