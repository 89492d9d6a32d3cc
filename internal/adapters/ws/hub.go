package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/app"
	"github.com/dkeye/Cinema/internal/domain"
	"github.com/dkeye/Cinema/internal/metrics"
)

// Hub holds the live connections and implements the Broadcaster
// capability the engine consumes. Room membership is read from the
// registry, so the hub never tracks subscriptions of its own.
type Hub struct {
	registry *app.Registry

	mu    sync.RWMutex
	conns map[domain.ConnectionID]*wsConn
}

func NewHub(registry *app.Registry) *Hub {
	return &Hub{registry: registry, conns: make(map[domain.ConnectionID]*wsConn)}
}

func (h *Hub) add(id domain.ConnectionID, c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
}

func (h *Hub) remove(id domain.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

func (h *Hub) get(id domain.ConnectionID) (*wsConn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

func (h *Hub) ToRoom(roomID domain.RoomID, event any) {
	h.fanOut(roomID, "", event)
}

func (h *Hub) ToRoomExcept(roomID domain.RoomID, except domain.ConnectionID, event any) {
	h.fanOut(roomID, except, event)
}

func (h *Hub) ToConn(conn domain.ConnectionID, event any) {
	c, ok := h.get(conn)
	if !ok {
		return
	}
	h.deliver(conn, c, event)
}

func (h *Hub) fanOut(roomID domain.RoomID, except domain.ConnectionID, event any) {
	sent := 0
	for _, id := range h.registry.ConnsInRoom(roomID) {
		if id == except {
			continue
		}
		if c, ok := h.get(id); ok {
			h.deliver(id, c, event)
			sent++
		}
	}
	log.Debug().Str("module", "ws.hub").Str("room", string(roomID)).Int("sent_to", sent).Msg("fan-out")
}

func (h *Hub) deliver(id domain.ConnectionID, c *wsConn, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("module", "ws.hub").Msg("marshal event")
		return
	}
	if err := c.TrySend(data); err != nil {
		metrics.BroadcastDrops.Inc()
		log.Warn().Str("module", "ws.hub").Str("conn", string(id)).Err(err).Msg("event dropped")
	}
}
