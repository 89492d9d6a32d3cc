package app

import (
	"errors"
	"testing"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
)

func newPlaybackFixture(t *testing.T) (*PlaybackController, domain.RoomID) {
	t.Helper()
	store := NewRoomStore()
	state, err := store.Create(RoomSpec{Name: "movie night", HostID: "host"})
	if err != nil {
		t.Fatal(err)
	}
	return NewPlaybackController(store), state.Room().ID
}

func TestPlaybackController_PauseHoldsExactly(t *testing.T) {
	ctrl, roomID := newPlaybackFixture(t)
	at := 42.0

	playback, nowMs, err := ctrl.Apply(roomID, core.ActionPause, &at, "")
	if err != nil {
		t.Fatal(err)
	}
	// No drift while paused, at any later instant.
	for _, dt := range []int64{0, 5000, 3_600_000} {
		if got := playback.EstimatedPosition(nowMs + dt); got != 42 {
			t.Errorf("EstimatedPosition(+%dms) = %v, want 42", dt, got)
		}
	}
}

func TestPlaybackController_PlayExtrapolates(t *testing.T) {
	ctrl, roomID := newPlaybackFixture(t)
	at := 10.0

	playback, nowMs, err := ctrl.Apply(roomID, core.ActionPlay, &at, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := playback.EstimatedPosition(nowMs + 5000); got != 15 {
		t.Errorf("EstimatedPosition(+5s) = %v, want 15", got)
	}
}

func TestPlaybackController_SeekKeepsPlayingState(t *testing.T) {
	ctrl, roomID := newPlaybackFixture(t)
	start := 0.0
	if _, _, err := ctrl.Apply(roomID, core.ActionPlay, &start, ""); err != nil {
		t.Fatal(err)
	}

	target := 120.0
	playback, _, err := ctrl.Apply(roomID, core.ActionSeek, &target, "")
	if err != nil {
		t.Fatal(err)
	}
	if !playback.IsPlaying {
		t.Error("seek must not change IsPlaying")
	}
	if playback.PositionSeconds != 120 {
		t.Errorf("PositionSeconds = %v, want 120", playback.PositionSeconds)
	}
}

func TestPlaybackController_Errors(t *testing.T) {
	ctrl, roomID := newPlaybackFixture(t)

	tests := []struct {
		name    string
		roomID  domain.RoomID
		action  string
		wantErr error
	}{
		{name: "unknown room", roomID: "nope", action: core.ActionPlay, wantErr: core.ErrRoomNotFound},
		{name: "unknown action", roomID: roomID, action: "rewind", wantErr: core.ErrValidation},
		{name: "seek without time", roomID: roomID, action: core.ActionSeek, wantErr: core.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ctrl.Apply(tt.roomID, tt.action, nil, ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
