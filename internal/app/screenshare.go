package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
)

// ScreenShareCoordinator enforces single-sharer-per-room exclusivity.
type ScreenShareCoordinator struct {
	store *RoomStore
}

func NewScreenShareCoordinator(store *RoomStore) *ScreenShareCoordinator {
	return &ScreenShareCoordinator{store: store}
}

// Start takes the share slot for userID. A current sharer is replaced
// outright; no rejection, no queue. The displaced party learns of it
// only from the started/roster broadcasts.
func (s *ScreenShareCoordinator) Start(roomID domain.RoomID, userID domain.UserID, displayName, quality string, delayHint int) (*domain.ScreenSharer, error) {
	state, ok := s.store.Get(roomID)
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	sharer := domain.ScreenSharer{
		UserID:      userID,
		DisplayName: displayName,
		Quality:     quality,
		DelayHint:   delayHint,
		StartedAt:   time.Now(),
	}
	if !state.StartShare(sharer) {
		return nil, core.ErrSenderNotInRoom
	}
	log.Info().Str("module", "app.share").Str("room", string(roomID)).Str("user", string(userID)).Msg("screen share started")
	return &sharer, nil
}

// Stop clears the slot only for its current owner. Stale stops are
// safe no-ops.
func (s *ScreenShareCoordinator) Stop(roomID domain.RoomID, userID domain.UserID) (bool, error) {
	state, ok := s.store.Get(roomID)
	if !ok {
		return false, core.ErrRoomNotFound
	}
	stopped := state.StopShare(userID)
	if stopped {
		log.Info().Str("module", "app.share").Str("room", string(roomID)).Str("user", string(userID)).Msg("screen share stopped")
	}
	return stopped, nil
}
