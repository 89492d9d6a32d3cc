package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
)

// RosterManager maintains the participants sequence per room and the
// connection reverse index. It mutates state and reports what
// happened; broadcasting the outcome is the engine's job.
type RosterManager struct {
	store    *RoomStore
	registry *Registry
}

func NewRosterManager(store *RoomStore, registry *Registry) *RosterManager {
	return &RosterManager{store: store, registry: registry}
}

// JoinResult is everything the engine needs to deliver the join
// outcome: the snapshot goes only to the joining connection.
type JoinResult struct {
	Room        *core.RoomState
	Participant domain.Participant
	Added       bool
}

func (m *RosterManager) Join(roomID domain.RoomID, user domain.User, conn domain.ConnectionID) (JoinResult, error) {
	state, ok := m.store.Get(roomID)
	if !ok {
		return JoinResult{}, core.ErrRoomNotFound
	}
	p := domain.Participant{
		UserID:       user.ID,
		DisplayName:  user.DisplayName,
		AvatarRef:    user.AvatarRef,
		ConnectionID: conn,
		JoinedAt:     time.Now(),
	}
	added := state.AddParticipant(p)
	m.registry.SetRoom(conn, roomID)
	log.Info().Str("module", "app.roster").Str("room", string(roomID)).Str("user", string(user.ID)).Bool("added", added).Msg("join")
	return JoinResult{Room: state, Participant: p, Added: added}, nil
}

// LeaveResult reports whether the departing user held the share slot,
// so the stop can be broadcast before the leave.
type LeaveResult struct {
	Room          *core.RoomState
	Participant   domain.Participant
	SharerStopped bool
}

func (m *RosterManager) Leave(roomID domain.RoomID, userID domain.UserID) (LeaveResult, bool) {
	state, ok := m.store.Get(roomID)
	if !ok {
		return LeaveResult{}, false
	}
	p, sharerCleared, removed := state.RemoveParticipant(userID)
	if !removed {
		return LeaveResult{}, false
	}
	log.Info().Str("module", "app.roster").Str("room", string(roomID)).Str("user", string(userID)).Msg("leave")
	return LeaveResult{Room: state, Participant: p, SharerStopped: sharerCleared}, true
}

// Disconnect resolves a bare connection id via the reverse index and
// behaves as Leave, except rows are matched on connection identity so
// a stale disconnect never evicts a newer connection of the same user.
func (m *RosterManager) Disconnect(conn domain.ConnectionID) (domain.RoomID, LeaveResult, bool) {
	userID, roomID, ok := m.registry.Resolve(conn)
	m.registry.Unbind(conn)
	if !ok || roomID == "" {
		return "", LeaveResult{}, false
	}
	state, ok := m.store.Get(roomID)
	if !ok {
		return "", LeaveResult{}, false
	}
	p, sharerCleared, removed := state.RemoveParticipantConn(userID, conn)
	if !removed {
		return "", LeaveResult{}, false
	}
	log.Info().Str("module", "app.roster").Str("room", string(roomID)).Str("user", string(userID)).Str("conn", string(conn)).Msg("disconnect")
	return roomID, LeaveResult{Room: state, Participant: p, SharerStopped: sharerCleared}, true
}
