package domain

import "time"

// ScreenSharer describes the single exclusive screen broadcaster of a
// room. At most one exists per room at any time.
type ScreenSharer struct {
	UserID      UserID    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Quality     string    `json:"quality,omitempty"`
	DelayHint   int       `json:"delay_hint,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}
