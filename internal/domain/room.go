package domain

import "time"

type RoomID string

// Room is the descriptive part of a watch-party session.
// Live state (roster, chat, playback, sharer) lives in core.RoomState.
type Room struct {
	ID           RoomID    `json:"id"`
	Name         string    `json:"name"`
	HostID       UserID    `json:"host_id"`
	HostName     string    `json:"host_name"`
	IsPrivate    bool      `json:"is_private"`
	AccessSecret string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AllowsAccess gates private rooms. The secret is compared as plain
// text; the host never needs one.
func (r *Room) AllowsAccess(requester UserID, secret string) bool {
	if !r.IsPrivate || requester == r.HostID {
		return true
	}
	return secret != "" && secret == r.AccessSecret
}
