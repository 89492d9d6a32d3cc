package core

import (
	"encoding/json"

	"github.com/dkeye/Cinema/internal/domain"
)

// Outbound event types. Events are tagged structs, never ad-hoc maps,
// so every payload the engine emits is well-formed by construction.
const (
	EventRoomState          = "room-state"
	EventParticipantJoined  = "participant-joined"
	EventParticipantLeft    = "participant-left"
	EventRosterUpdated      = "roster-updated"
	EventMessagePosted      = "message-posted"
	EventPlaybackUpdated    = "playback-updated"
	EventScreenShareStarted = "screen-share-started"
	EventScreenShareStopped = "screen-share-stopped"
	EventScreenFrame        = "screen-frame"
	EventPong               = "pong"
	EventError              = "error"
)

// RoomSnapshot is the full view delivered to a joining connection.
type RoomSnapshot struct {
	Type         string               `json:"type"`
	Room         domain.Room          `json:"room"`
	Participants []domain.Participant `json:"participants"`
	Messages     []domain.Message     `json:"messages"`
	Playback     domain.Playback      `json:"playback"`
	Sharer       *domain.ScreenSharer `json:"sharer,omitempty"`
	ServerNowMs  int64                `json:"server_now_ms"`
}

type ParticipantEvent struct {
	Type        string             `json:"type"`
	RoomID      domain.RoomID      `json:"room_id"`
	Participant domain.Participant `json:"participant"`
}

type RosterEvent struct {
	Type         string               `json:"type"`
	RoomID       domain.RoomID        `json:"room_id"`
	Participants []domain.Participant `json:"participants"`
}

type MessageEvent struct {
	Type    string         `json:"type"`
	RoomID  domain.RoomID  `json:"room_id"`
	Message domain.Message `json:"message"`
}

// PlaybackEvent is stamped with the server clock so every receiver
// extrapolates from the same baseline regardless of the sender's clock.
type PlaybackEvent struct {
	Type        string          `json:"type"`
	RoomID      domain.RoomID   `json:"room_id"`
	Action      string          `json:"action"`
	Playback    domain.Playback `json:"playback"`
	ServerNowMs int64           `json:"server_now_ms"`
}

type ScreenShareEvent struct {
	Type   string               `json:"type"`
	RoomID domain.RoomID        `json:"room_id"`
	UserID domain.UserID        `json:"user_id"`
	Sharer *domain.ScreenSharer `json:"sharer,omitempty"`
}

// ScreenFrameEvent relays an opaque payload without inspecting it.
type ScreenFrameEvent struct {
	Type   string          `json:"type"`
	RoomID domain.RoomID   `json:"room_id"`
	UserID domain.UserID   `json:"user_id"`
	Frame  json.RawMessage `json:"frame"`
	Meta   json.RawMessage `json:"meta,omitempty"`
}

type PongEvent struct {
	Type string `json:"type"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewParticipantJoined(roomID domain.RoomID, p domain.Participant) ParticipantEvent {
	return ParticipantEvent{Type: EventParticipantJoined, RoomID: roomID, Participant: p}
}

func NewParticipantLeft(roomID domain.RoomID, p domain.Participant) ParticipantEvent {
	return ParticipantEvent{Type: EventParticipantLeft, RoomID: roomID, Participant: p}
}

func NewRosterUpdated(roomID domain.RoomID, participants []domain.Participant) RosterEvent {
	return RosterEvent{Type: EventRosterUpdated, RoomID: roomID, Participants: participants}
}

func NewMessagePosted(roomID domain.RoomID, m domain.Message) MessageEvent {
	return MessageEvent{Type: EventMessagePosted, RoomID: roomID, Message: m}
}

func NewPlaybackUpdated(roomID domain.RoomID, action string, p domain.Playback, nowMs int64) PlaybackEvent {
	return PlaybackEvent{Type: EventPlaybackUpdated, RoomID: roomID, Action: action, Playback: p, ServerNowMs: nowMs}
}

func NewScreenShareStarted(roomID domain.RoomID, s *domain.ScreenSharer) ScreenShareEvent {
	return ScreenShareEvent{Type: EventScreenShareStarted, RoomID: roomID, UserID: s.UserID, Sharer: s}
}

func NewScreenShareStopped(roomID domain.RoomID, userID domain.UserID) ScreenShareEvent {
	return ScreenShareEvent{Type: EventScreenShareStopped, RoomID: roomID, UserID: userID}
}

func NewScreenFrame(roomID domain.RoomID, userID domain.UserID, frame, meta json.RawMessage) ScreenFrameEvent {
	return ScreenFrameEvent{Type: EventScreenFrame, RoomID: roomID, UserID: userID, Frame: frame, Meta: meta}
}

func NewError(msg string) ErrorEvent {
	return ErrorEvent{Type: EventError, Error: msg}
}
