package domain

import "time"

// Queue is the playlist of a room using an index-based model.
// Tracks are never removed when they finish; currentIndex advances through the
// list instead, so earlier tracks stay available for "previous".
type Queue struct {
	tracks       []TrackMetadata
	currentIndex int
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks:       make([]TrackMetadata, 0),
		currentIndex: 0,
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// IsAtLast returns true if the current track is the last in the queue.
// An empty queue is considered to be at its last track.
func (q *Queue) IsAtLast() bool {
	return q.Len() <= q.currentIndex+1
}

func (q *Queue) isValidIndex(index int) bool {
	return 0 <= index && index < q.Len()
}

// Len returns the total number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// CurrentIndex returns the current track index.
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Current returns the track at currentIndex, or nil if the queue is empty.
func (q *Queue) Current() *TrackMetadata {
	if q.IsEmpty() {
		return nil
	}
	t := q.tracks[q.currentIndex]
	return &t
}

// Previous returns the track before currentIndex, or nil at the first track.
func (q *Queue) Previous() *TrackMetadata {
	return q.GetAt(q.currentIndex - 1)
}

// GetAt returns the track at the given index.
// Returns nil if the index is out of bounds.
func (q *Queue) GetAt(index int) *TrackMetadata {
	if !q.isValidIndex(index) {
		return nil
	}
	t := q.tracks[index]
	return &t
}

// List returns a copy of all tracks in the queue.
func (q *Queue) List() []TrackMetadata {
	result := make([]TrackMetadata, q.Len())
	copy(result, q.tracks)
	return result
}

// Append adds track(s) to the end of the queue.
func (q *Queue) Append(tracks ...TrackMetadata) {
	q.tracks = append(q.tracks, tracks...)
}

// Advance moves to the next track.
// Returns false without moving if the current track is the last one.
func (q *Queue) Advance() bool {
	if q.IsAtLast() {
		return false
	}
	q.currentIndex++
	return true
}

// Retreat moves to the previous track, staying at 0 on the first track.
func (q *Queue) Retreat() {
	if q.currentIndex > 0 {
		q.currentIndex--
	}
}

// Elapsed returns the summed duration of the tracks before the current one.
func (q *Queue) Elapsed() time.Duration {
	var d time.Duration
	for _, t := range q.tracks[:min(q.currentIndex, q.Len())] {
		d += t.Duration
	}
	return d
}

// Total returns the summed duration of every track.
func (q *Queue) Total() time.Duration {
	var d time.Duration
	for _, t := range q.tracks {
		d += t.Duration
	}
	return d
}

// Clear removes all tracks from the queue and resets the index.
func (q *Queue) Clear() {
	q.tracks = make([]TrackMetadata, 0)
	q.currentIndex = 0
}
