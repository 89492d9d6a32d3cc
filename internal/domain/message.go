package domain

import "time"

// Message is immutable once created.
type Message struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarRef   string    `json:"avatar_ref,omitempty"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
