package infrastructure

import (
	"context"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

// room pairs a QueueState with the lock serializing access to it.
// The lock is a one-slot channel so that waiting for it can honour a context.
type room struct {
	lock  chan struct{}
	state *domain.QueueState
}

// MemoryQueueStore is an in-memory implementation of domain.QueueStore with one
// lock per room.
type MemoryQueueStore struct {
	mu    sync.RWMutex
	rooms map[snowflake.ID]*room
}

// NewMemoryQueueStore creates a new MemoryQueueStore.
func NewMemoryQueueStore() *MemoryQueueStore {
	return &MemoryQueueStore{
		rooms: make(map[snowflake.ID]*room),
	}
}

// With runs fn with exclusive access to the room's state.
// Returns domain.ErrNoQueue if the room has no state.
func (s *MemoryQueueStore) With(
	ctx context.Context,
	guildID snowflake.ID,
	fn func(*domain.QueueState) error,
) error {
	s.mu.RLock()
	r, ok := s.rooms[guildID]
	s.mu.RUnlock()

	if !ok {
		return domain.ErrNoQueue
	}
	return r.run(ctx, fn)
}

// WithOrCreate runs fn with exclusive access to the room's state, creating an
// empty stopping state first if needed.
func (s *MemoryQueueStore) WithOrCreate(
	ctx context.Context,
	guildID snowflake.ID,
	fn func(*domain.QueueState) error,
) error {
	return s.getOrCreate(guildID).run(ctx, fn)
}

func (s *MemoryQueueStore) getOrCreate(guildID snowflake.ID) *room {
	s.mu.RLock()
	r, ok := s.rooms[guildID]
	s.mu.RUnlock()
	if ok {
		return r
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have created it between the two locks.
	if r, ok := s.rooms[guildID]; ok {
		return r
	}
	r = &room{
		lock:  make(chan struct{}, 1),
		state: domain.NewQueueState(guildID),
	}
	s.rooms[guildID] = r
	return r
}

// run acquires the room lock, honouring ctx only while waiting.
// Once fn starts it always runs to completion.
func (r *room) run(ctx context.Context, fn func(*domain.QueueState) error) error {
	select {
	case r.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-r.lock }()

	return fn(r.state)
}

// Remove deletes the room's state.
func (s *MemoryQueueStore) Remove(guildID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, guildID)
}

// GuildIDs returns the rooms that currently have state.
func (s *MemoryQueueStore) GuildIDs() []snowflake.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]snowflake.ID, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of rooms (for testing/monitoring).
func (s *MemoryQueueStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}

// Ensure MemoryQueueStore implements QueueStore.
var _ domain.QueueStore = (*MemoryQueueStore)(nil)
