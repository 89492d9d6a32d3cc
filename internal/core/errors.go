package core

import "errors"

// Recoverable-by-caller conditions. They are reported synchronously to
// the originating caller only and never propagate to other connections.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrForbidden       = errors.New("forbidden")
	ErrSenderNotInRoom = errors.New("sender not in room")
	ErrValidation      = errors.New("validation failed")
)
