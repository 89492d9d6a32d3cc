package app

import (
	"time"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
	"github.com/dkeye/Cinema/internal/metrics"
)

// PlaybackController mutates a room's authoritative playback anchor.
// The server never ticks; clients extrapolate from the anchor and the
// server timestamp stamped on each broadcast.
type PlaybackController struct {
	store *RoomStore
}

func NewPlaybackController(store *RoomStore) *PlaybackController {
	return &PlaybackController{store: store}
}

// Apply executes one control action and returns the updated anchor
// plus the server now-millis it was stamped with. Unknown actions and
// a seek without a time report ok=false.
func (p *PlaybackController) Apply(roomID domain.RoomID, action string, timeSec *float64, url string) (domain.Playback, int64, error) {
	state, ok := p.store.Get(roomID)
	if !ok {
		return domain.Playback{}, 0, core.ErrRoomNotFound
	}
	nowMs := time.Now().UnixMilli()
	playback, applied := state.ApplyControl(action, timeSec, url, nowMs)
	if !applied {
		return domain.Playback{}, 0, core.ErrValidation
	}
	metrics.PlaybackControls.WithLabelValues(action).Inc()
	return playback, nowMs, nil
}
