package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/domain"
)

type connEntry struct {
	UserID domain.UserID
	RoomID domain.RoomID
}

// Registry is the reverse index from transport connection id to
// (userId, roomId). Disconnect notifications arrive with nothing but
// the connection identity; this is how they are resolved.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnectionID]*connEntry)}
}

func (r *Registry) Bind(conn domain.ConnectionID, user domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn] = &connEntry{UserID: user}
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Str("user", string(user)).Msg("bound connection")
}

func (r *Registry) SetRoom(conn domain.ConnectionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[conn]
	if !ok {
		return false
	}
	entry.RoomID = room
	return true
}

func (r *Registry) ClearRoom(conn domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.conns[conn]; ok {
		entry.RoomID = ""
	}
}

// Resolve returns the (user, room) a connection currently maps to.
func (r *Registry) Resolve(conn domain.ConnectionID) (domain.UserID, domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[conn]
	if !ok {
		return "", "", false
	}
	return entry.UserID, entry.RoomID, true
}

func (r *Registry) Unbind(conn domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, conn)
	log.Info().Str("module", "app.registry").Str("conn", string(conn)).Msg("unbound connection")
}

// ConnsInRoom enumerates the connections currently associated with a
// room. Linear over connections; fine at the single-node scale this
// engine targets.
func (r *Registry) ConnsInRoom(room domain.RoomID) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ConnectionID, 0, len(r.conns))
	for conn, entry := range r.conns {
		if entry.RoomID == room {
			out = append(out, conn)
		}
	}
	return out
}
