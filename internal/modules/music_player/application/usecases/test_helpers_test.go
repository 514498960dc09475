package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/sglre6355/beat/internal/modules/music_player/application/ports"
	"github.com/sglre6355/beat/internal/modules/music_player/domain"
)

const (
	testGuildID   = snowflake.ID(1)
	testUserID    = snowflake.ID(2)
	testChannelID = snowflake.ID(3)
	testVoiceID   = snowflake.ID(4)
)

func mockTrack(id string) TrackMetadata {
	return TrackMetadata{
		Title:     "Track " + id,
		Artist:    "Artist",
		Duration:  3 * time.Minute,
		SourceURL: "https://example.com/watch?v=" + id,
	}
}

// mockQueueStore is a QueueStore with one global lock, enough for sequential tests.
type mockQueueStore struct {
	mu     sync.Mutex
	states map[snowflake.ID]*domain.QueueState
}

func newMockQueueStore() *mockQueueStore {
	return &mockQueueStore{
		states: make(map[snowflake.ID]*domain.QueueState),
	}
}

func (m *mockQueueStore) With(
	_ context.Context,
	guildID snowflake.ID,
	fn func(*domain.QueueState) error,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[guildID]
	if !ok {
		return domain.ErrNoQueue
	}
	return fn(state)
}

func (m *mockQueueStore) WithOrCreate(
	_ context.Context,
	guildID snowflake.ID,
	fn func(*domain.QueueState) error,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[guildID]
	if !ok {
		state = domain.NewQueueState(guildID)
		m.states[guildID] = state
	}
	return fn(state)
}

func (m *mockQueueStore) Remove(guildID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, guildID)
}

func (m *mockQueueStore) GuildIDs() []snowflake.ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]snowflake.ID, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	return ids
}

func (m *mockQueueStore) get(guildID snowflake.ID) *domain.QueueState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[guildID]
}

// begin creates a room bound to session with the given tracks appended.
func (m *mockQueueStore) begin(session uuid.UUID, tracks ...TrackMetadata) *domain.QueueState {
	state := domain.NewQueueState(testGuildID)
	state.Begin(testChannelID, session)
	for _, t := range tracks {
		if _, err := state.Insert(t); err != nil {
			panic(err)
		}
	}

	m.mu.Lock()
	m.states[testGuildID] = state
	m.mu.Unlock()
	return state
}

type mockHandle struct {
	id     uuid.UUID
	queue  domain.PlayQueue[domain.Source]
	calls  []string
	paused bool
	ended  uint64

	enqueueErr error
	skipErr    error
	pauseErr   error
	resumeErr  error
	stopErr    error
	reorderErr error
}

func newMockHandle() *mockHandle {
	return &mockHandle{id: uuid.New()}
}

var _ ports.PlayHandle = (*mockHandle)(nil)

func (h *mockHandle) ID() uuid.UUID { return h.id }

func (h *mockHandle) Enqueue(_ context.Context, src domain.Source, _ time.Duration) error {
	h.calls = append(h.calls, "enqueue")
	if h.enqueueErr != nil {
		return h.enqueueErr
	}
	h.queue.PushBack(src)
	return nil
}

func (h *mockHandle) Skip(_ context.Context) error {
	h.calls = append(h.calls, "skip")
	if h.skipErr != nil {
		return h.skipErr
	}
	if _, ok := h.queue.PopFront(); ok {
		h.ended++
	}
	return nil
}

func (h *mockHandle) Pause(_ context.Context) error {
	h.calls = append(h.calls, "pause")
	if h.pauseErr != nil {
		return h.pauseErr
	}
	h.paused = true
	return nil
}

func (h *mockHandle) Resume(_ context.Context) error {
	h.calls = append(h.calls, "resume")
	if h.resumeErr != nil {
		return h.resumeErr
	}
	h.paused = false
	return nil
}

func (h *mockHandle) Stop(_ context.Context) error {
	h.calls = append(h.calls, "stop")
	if h.stopErr != nil {
		return h.stopErr
	}
	h.queue.Clear()
	h.id = uuid.New()
	h.ended = 0
	return nil
}

func (h *mockHandle) Reorder(_ context.Context, fn func(q *domain.PlayQueue[domain.Source])) error {
	h.calls = append(h.calls, "reorder")
	if h.reorderErr != nil {
		return h.reorderErr
	}
	fn(&h.queue)
	return nil
}

func (h *mockHandle) Len() int { return h.queue.Len() }

func (h *mockHandle) Ended() uint64 { return h.ended }

func (h *mockHandle) urls() []string {
	var urls []string
	for _, src := range h.queue.Entries() {
		urls = append(urls, src.URL)
	}
	return urls
}

type mockEngine struct {
	handles    map[snowflake.ID]*mockHandle
	connectErr error
	releaseErr error
	connected  []snowflake.ID // voice channels
	released   []snowflake.ID
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		handles: make(map[snowflake.ID]*mockHandle),
	}
}

var _ ports.VoiceEngine = (*mockEngine)(nil)

func (e *mockEngine) Connect(_ context.Context, guildID, channelID snowflake.ID) (ports.PlayHandle, error) {
	if e.connectErr != nil {
		return nil, e.connectErr
	}
	h := newMockHandle()
	e.handles[guildID] = h
	e.connected = append(e.connected, channelID)
	return h, nil
}

func (e *mockEngine) Handle(guildID snowflake.ID) (ports.PlayHandle, bool) {
	h, ok := e.handles[guildID]
	if !ok {
		return nil, false
	}
	return h, true
}

func (e *mockEngine) Release(_ context.Context, guildID snowflake.ID) error {
	e.released = append(e.released, guildID)
	delete(e.handles, guildID)
	return e.releaseErr
}

// connect installs a handle for the test guild as if Connect had been called.
func (e *mockEngine) connect() *mockHandle {
	h := newMockHandle()
	e.handles[testGuildID] = h
	return h
}

type mockChat struct {
	nextID  snowflake.ID
	sent    []domain.StatusView
	edited  []domain.StatusView
	deleted []domain.StatusMessage

	purgeKeep  *snowflake.ID
	purgeCount int

	sendErr   error
	editErr   error
	deleteErr error
	purgeErr  error
}

var _ ports.ChatTransport = (*mockChat)(nil)

func (c *mockChat) SendStatus(_ context.Context, _ snowflake.ID, view domain.StatusView) (snowflake.ID, error) {
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	c.nextID++
	c.sent = append(c.sent, view)
	return 100 + c.nextID, nil
}

func (c *mockChat) EditStatus(_ context.Context, _ domain.StatusMessage, view domain.StatusView) error {
	if c.editErr != nil {
		return c.editErr
	}
	c.edited = append(c.edited, view)
	return nil
}

func (c *mockChat) DeleteMessage(_ context.Context, msg domain.StatusMessage) error {
	c.deleted = append(c.deleted, msg)
	return c.deleteErr
}

func (c *mockChat) PurgeBotMessages(_ context.Context, _ snowflake.ID, keep *snowflake.ID) (int, error) {
	c.purgeKeep = keep
	if c.purgeErr != nil {
		return 0, c.purgeErr
	}
	return c.purgeCount, nil
}

// lastView returns the most recent rendered view, sent or edited.
func (c *mockChat) lastView() (domain.StatusView, bool) {
	if len(c.edited) > 0 {
		return c.edited[len(c.edited)-1], true
	}
	if len(c.sent) > 0 {
		return c.sent[len(c.sent)-1], true
	}
	return domain.StatusView{}, false
}

type mockResolver struct {
	tracks    map[string]TrackMetadata
	errs      map[string]error
	playlist  []string
	expandErr error

	resolved    []string
	expandStart int

	// onResolve runs before each lookup, outside any room lock.
	onResolve func(query string)
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		tracks: make(map[string]TrackMetadata),
		errs:   make(map[string]error),
	}
}

var _ ports.TrackResolver = (*mockResolver)(nil)

func (r *mockResolver) Resolve(_ context.Context, query string) (domain.TrackMetadata, error) {
	r.resolved = append(r.resolved, query)
	if r.onResolve != nil {
		r.onResolve(query)
	}
	if err, ok := r.errs[query]; ok {
		return domain.TrackMetadata{}, err
	}
	if t, ok := r.tracks[query]; ok {
		return t, nil
	}
	return domain.TrackMetadata{}, fmt.Errorf("unknown query %q", query)
}

func (r *mockResolver) ExpandPlaylist(_ context.Context, _ string, start int) ([]string, error) {
	r.expandStart = start
	if r.expandErr != nil {
		return nil, r.expandErr
	}
	return r.playlist, nil
}

// add registers a track under both its source URL and ref.
func (r *mockResolver) add(ref string, t TrackMetadata) {
	r.tracks[ref] = t
	r.tracks[t.SourceURL] = t
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{
		channels: map[snowflake.ID]snowflake.ID{testUserID: testVoiceID},
	}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockPlaylistStore struct {
	playlists map[snowflake.ID]map[domain.PlaylistName][]string
	saveErr   error
}

func newMockPlaylistStore() *mockPlaylistStore {
	return &mockPlaylistStore{
		playlists: make(map[snowflake.ID]map[domain.PlaylistName][]string),
	}
}

var _ ports.PlaylistStore = (*mockPlaylistStore)(nil)

func (s *mockPlaylistStore) Save(
	_ context.Context,
	guildID snowflake.ID,
	name domain.PlaylistName,
	refs []string,
) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.playlists[guildID] == nil {
		s.playlists[guildID] = make(map[domain.PlaylistName][]string)
	}
	s.playlists[guildID][name] = append([]string(nil), refs...)
	return nil
}

func (s *mockPlaylistStore) Load(
	_ context.Context,
	guildID snowflake.ID,
	name domain.PlaylistName,
) ([]string, error) {
	refs, ok := s.playlists[guildID][name]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	return refs, nil
}

func (s *mockPlaylistStore) List(_ context.Context, guildID snowflake.ID) ([]domain.PlaylistName, error) {
	var names []domain.PlaylistName
	for name := range s.playlists[guildID] {
		names = append(names, name)
	}
	return names, nil
}

// testEnv wires every service against the mocks.
type testEnv struct {
	queues    *mockQueueStore
	engine    *mockEngine
	chat      *mockChat
	resolver  *mockResolver
	voice     *mockVoiceStateProvider
	playlists *mockPlaylistStore

	status   *StatusPresenter
	closer   *RoomCloser
	channels *VoiceChannelService
	loader   *TrackLoaderService
	queue    *QueueService
	playback *PlaybackService
	playlist *PlaylistService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		queues:    newMockQueueStore(),
		engine:    newMockEngine(),
		chat:      &mockChat{},
		resolver:  newMockResolver(),
		voice:     newMockVoiceStateProvider(),
		playlists: newMockPlaylistStore(),
	}

	env.status = NewStatusPresenter(env.chat, 0)
	env.closer = NewRoomCloser(env.engine, env.status, 0)
	env.channels = NewVoiceChannelService(env.queues, env.engine, env.voice, env.status, env.closer, 0)
	env.loader = NewTrackLoaderService(env.resolver)
	env.queue = NewQueueService(env.queues, env.engine, env.chat, env.channels, env.loader, env.status, 0, 0)
	env.playback = NewPlaybackService(env.queues, env.engine, env.status, 0, 0)
	env.playlist = NewPlaylistService(env.playlists, env.queues, env.channels, env.queue)

	return env
}

// playing sets up a connected room playing tracks, with the engine queue
// holding the tracks from index onwards.
func (env *testEnv) playing(index int, tracks ...TrackMetadata) (*domain.QueueState, *mockHandle) {
	handle := env.engine.connect()
	state := env.queues.begin(handle.ID(), tracks...)
	for range index {
		state.AdvanceTrack()
	}
	for _, t := range tracks[index:] {
		src, err := domain.NewSource(t)
		if err != nil {
			panic(err)
		}
		handle.queue.PushBack(src)
	}
	return state, handle
}

var errBoom = errors.New("boom")
