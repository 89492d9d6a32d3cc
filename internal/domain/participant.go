package domain

import "time"

type ConnectionID string

// Participant is one user's membership in one room for the duration of
// a live connection. ConnectionID is the join key for disconnect cleanup.
type Participant struct {
	UserID          UserID       `json:"user_id"`
	DisplayName     string       `json:"display_name"`
	AvatarRef       string       `json:"avatar_ref,omitempty"`
	ConnectionID    ConnectionID `json:"-"`
	JoinedAt        time.Time    `json:"joined_at"`
	IsSharingScreen bool         `json:"is_sharing_screen"`
}
