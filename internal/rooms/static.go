package rooms

import (
	"context"
	"sync"
)

// Static is an in-memory Directory.
type Static struct {
	mu       sync.Mutex
	settings map[string]Settings
	members  map[string][]string
}

func NewStatic() *Static {
	return &Static{
		settings: make(map[string]Settings),
		members:  make(map[string][]string),
	}
}

// Put registers or replaces a room and its ordered member list.
func (s *Static) Put(settings Settings, members ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.RoomID] = settings
	s.members[settings.RoomID] = append([]string(nil), members...)
}

func (s *Static) ActiveMembers(_ context.Context, roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settings[roomID]; !ok {
		return nil, ErrRoomNotFound
	}
	return append([]string(nil), s.members[roomID]...), nil
}

func (s *Static) Settings(_ context.Context, roomID string) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.settings[roomID]
	if !ok {
		return Settings{}, ErrRoomNotFound
	}
	return settings, nil
}
