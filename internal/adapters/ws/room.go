package ws

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
)

func (ctl *Controller) handleJoin(connID domain.ConnectionID, c *wsConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		Room string `json:"room_id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
		ctl.sendJSON(c, core.NewError("bad_payload"))
		return
	}

	userID, _, ok := ctl.Engine.Registry.Resolve(connID)
	if !ok {
		ctl.sendJSON(c, core.NewError("unknown connection"))
		return
	}
	user := ctl.Engine.Directory.Lookup(userID)

	log.Info().Str("module", "ws").Str("conn", string(connID)).Str("room", p.Room).Msg("join")
	if err := ctl.Engine.JoinRoom(connID, domain.RoomID(p.Room), user); err != nil {
		if errors.Is(err, core.ErrRoomNotFound) {
			ctl.sendJSON(c, core.NewError("room not found"))
			return
		}
		ctl.sendJSON(c, core.NewError("join failed"))
	}
}

func (ctl *Controller) handleLeave(connID domain.ConnectionID, data []byte) {
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
	ctl.Engine.LeaveRoom(connID, domain.RoomID(p.Room), userID)
}
