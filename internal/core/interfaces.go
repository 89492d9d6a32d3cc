package core

import "github.com/dkeye/Cinema/internal/domain"

// Broadcaster is the capability the messaging transport exposes to the
// engine. The engine only ever calls this; it never manages transport
// subscriptions itself. Delivery is fire-and-forget: the engine does
// not wait for any recipient to acknowledge.
type Broadcaster interface {
	ToRoom(roomID domain.RoomID, event any)
	ToRoomExcept(roomID domain.RoomID, except domain.ConnectionID, event any)
	ToConn(conn domain.ConnectionID, event any)
}
