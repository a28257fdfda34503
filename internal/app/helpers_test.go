package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hward/huddle/internal/core"
	"github.com/hward/huddle/internal/domain"
)

// fakeConn records every frame instead of writing to a socket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// events decodes the recorded frames into generic maps.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

// types lists the wire types of the recorded frames, in order.
func (f *fakeConn) types(t *testing.T) []string {
	t.Helper()
	evts := f.events(t)
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e["type"].(string))
	}
	return out
}

// fakeStore is an in-memory StateStore.
type fakeStore struct {
	mu       sync.Mutex
	members  map[domain.RoomID]map[domain.UserID]struct{}
	presence map[domain.ConnID]bool
	alerts   []*domain.EmergencyAlert
	pushErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:  make(map[domain.RoomID]map[domain.UserID]struct{}),
		presence: make(map[domain.ConnID]bool),
	}
}

func (f *fakeStore) AddRoomMember(_ context.Context, room domain.RoomID, user domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.members[room]
	if !ok {
		set = make(map[domain.UserID]struct{})
		f.members[room] = set
	}
	set[user] = struct{}{}
	return nil
}

func (f *fakeStore) RemoveRoomMember(_ context.Context, room domain.RoomID, user domain.UserID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if set, ok := f.members[room]; ok {
		delete(set, user)
	}
	return nil
}

func (f *fakeStore) RoomMembers(_ context.Context, room domain.RoomID) ([]domain.UserID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.UserID, 0)
	for u := range f.members[room] {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeStore) SetPresence(_ context.Context, s *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presence[s.ConnID] = true
	return nil
}

func (f *fakeStore) ClearPresence(_ context.Context, connID domain.ConnID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.presence, connID)
	return nil
}

func (f *fakeStore) PushAlert(_ context.Context, a *domain.EmergencyAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.alerts = append([]*domain.EmergencyAlert{a}, f.alerts...)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

// connect registers a session with a recording transport.
func connect(t *testing.T, c *Coordinator, connID domain.ConnID, userID domain.UserID, name string, role domain.Role) *fakeConn {
	t.Helper()
	s, err := domain.NewSession(connID, userID, name, role)
	require.NoError(t, err)
	conn := &fakeConn{}
	_, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Connect(context.Background(), s, conn, cancel))
	return conn
}
