package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/domain"
)

func (ctl *Controller) handleShareStart(connID domain.ConnectionID, data []byte) {
	var p struct {
		Type      string `json:"type"`
		Room      string `json:"room_id"`
		Quality   string `json:"quality,omitempty"`
		DelayHint int    `json:"delay_hint,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		return
	}
	userID, _, ok := ctl.Engine.Registry.Resolve(connID)
	if !ok {
		return
	}
	user := ctl.Engine.Directory.Lookup(userID)
	if err := ctl.Engine.StartScreenShare(domain.RoomID(p.Room), userID, user.DisplayName, p.Quality, p.DelayHint); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("room", p.Room).Msg("share start dropped")
	}
}

// handleFrame is the hot path; it resolves identity and relays, no
// sharer validation.
func (ctl *Controller) handleFrame(connID domain.ConnectionID, data []byte) {
	var p struct {
		Type  string          `json:"type"`
		Room  string          `json:"room_id"`
		Frame json.RawMessage `json:"frame"`
		Meta  json.RawMessage `json:"meta,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || len(p.Frame) == 0 {
		return
	}
	userID, _, ok := ctl.Engine.Registry.Resolve(connID)
	if !ok {
		return
	}
	ctl.Engine.RelayFrame(connID, domain.RoomID(p.Room), userID, p.Frame, p.Meta)
}

func (ctl *Controller) handleShareStop(connID domain.ConnectionID, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		return
	}
	userID, _, ok := ctl.Engine.Registry.Resolve(connID)
	if !ok {
		return
	}
	if err := ctl.Engine.StopScreenShare(domain.RoomID(p.Room), userID); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("room", p.Room).Msg("share stop dropped")
	}
}
