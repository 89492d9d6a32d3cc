package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/domain"
)

// handleMessage posts chat. Failures (unknown room, sender already
// gone, empty body) are not broadcast; the sender's optimistic local
// state self-corrects on the next successful event.
func (ctl *Controller) handleMessage(connID domain.ConnectionID, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room_id"`
		Body string `json:"body"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		return
	}
	userID, _, ok := ctl.Engine.Registry.Resolve(connID)
	if !ok {
		return
	}
	if !ctl.chatLimit.Allow(userID) {
		log.Warn().Str("module", "ws").Str("user", string(userID)).Msg("chat rate limited")
		return
	}
	if err := ctl.Engine.SendMessage(domain.RoomID(p.Room), userID, p.Body); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("room", p.Room).Msg("message rejected")
	}
}
