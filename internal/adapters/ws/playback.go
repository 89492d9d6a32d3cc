package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/domain"
)

func (ctl *Controller) handleVideoControl(connID domain.ConnectionID, data []byte) {
	var p struct {
		Type   string   `json:"type"`
		Room   string   `json:"room_id"`
		Action string   `json:"action"`
		Time   *float64 `json:"time,omitempty"`
		URL    string   `json:"url,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" || p.Action == "" {
		return
	}
	if err := ctl.Engine.VideoControl(connID, domain.RoomID(p.Room), p.Action, p.Time, p.URL); err != nil {
		log.Debug().Err(err).Str("module", "ws").Str("room", p.Room).Str("action", p.Action).Msg("control dropped")
	}
}
