package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
	"github.com/dkeye/Cinema/internal/metrics"
)

// DefaultHistoryLimit bounds history queries that don't ask for a
// specific size.
const DefaultHistoryLimit = 100

// ChatLog appends and bounds a room's message history.
type ChatLog struct {
	store *RoomStore
}

func NewChatLog(store *RoomStore) *ChatLog {
	return &ChatLog{store: store}
}

// Append stores a message. The body is kept verbatim apart from edge
// whitespace; escaping is the presentation layer's concern. A body
// that trims to nothing is rejected.
func (c *ChatLog) Append(roomID domain.RoomID, userID domain.UserID, body string) (domain.Message, error) {
	state, ok := c.store.Get(roomID)
	if !ok {
		return domain.Message{}, core.ErrRoomNotFound
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Message{}, fmt.Errorf("%w: empty message body", core.ErrValidation)
	}
	msg, err := state.AppendMessage(userID, uuid.NewString(), body, time.Now())
	if err != nil {
		return domain.Message{}, err
	}
	metrics.ChatMessages.Inc()
	return msg, nil
}

// History returns the most recent limit messages in chronological
// order, never more than what is stored.
func (c *ChatLog) History(roomID domain.RoomID, limit int) ([]domain.Message, error) {
	state, ok := c.store.Get(roomID)
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return state.RecentMessages(limit), nil
}
