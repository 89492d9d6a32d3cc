package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
	"github.com/dkeye/Cinema/internal/metrics"
)

const MaxRoomNameLen = 64

// RoomSpec is what a creation request must carry.
type RoomSpec struct {
	Name         string
	HostID       domain.UserID
	HostName     string
	IsPrivate    bool
	AccessSecret string
	VideoRef     string
}

// RoomStore owns the authoritative map of room id to room state.
// State is volatile: nothing survives a process restart.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*core.RoomState
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*core.RoomState)}
}

func (s *RoomStore) Create(spec RoomSpec) (*core.RoomState, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", core.ErrValidation)
	}
	// Truncate on rune boundaries so a multi-byte name never gets cut
	// mid-sequence.
	if runes := []rune(name); len(runes) > MaxRoomNameLen {
		name = string(runes[:MaxRoomNameLen])
	}
	if spec.IsPrivate && spec.AccessSecret == "" {
		return nil, fmt.Errorf("%w: private room needs an access secret", core.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := newRoomID()
	for _, taken := s.rooms[id]; taken; _, taken = s.rooms[id] {
		id = newRoomID()
	}
	room := domain.Room{
		ID:           id,
		Name:         name,
		HostID:       spec.HostID,
		HostName:     spec.HostName,
		IsPrivate:    spec.IsPrivate,
		AccessSecret: spec.AccessSecret,
		CreatedAt:    time.Now(),
	}
	state := core.NewRoomState(room)
	if spec.VideoRef != "" {
		state.ApplyControl(core.ActionChangeVideo, nil, spec.VideoRef, time.Now().UnixMilli())
	}
	s.rooms[id] = state
	metrics.RoomsOpen.Inc()
	log.Info().Str("module", "app.store").Str("room", string(id)).Str("host", string(spec.HostID)).Msg("room created")
	return state, nil
}

func (s *RoomStore) Get(id domain.RoomID) (*core.RoomState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.rooms[id]
	return state, ok
}

// Delete removes the room; only the host may do it.
func (s *RoomStore) Delete(id domain.RoomID, requester domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.rooms[id]
	if !ok {
		return core.ErrRoomNotFound
	}
	if state.Room().HostID != requester {
		return core.ErrForbidden
	}
	delete(s.rooms, id)
	metrics.RoomsOpen.Dec()
	log.Info().Str("module", "app.store").Str("room", string(id)).Msg("room deleted")
	return nil
}

func (s *RoomStore) List() []*core.RoomState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.RoomState, 0, len(s.rooms))
	for _, state := range s.rooms {
		out = append(out, state)
	}
	return out
}

// Short opaque ids, friendlier to paste in an invite link than a full
// uuid.
func newRoomID() domain.RoomID {
	return domain.RoomID(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
