package app

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
	"github.com/dkeye/Cinema/internal/metrics"
)

// Engine is the room session facade. Each inbound event dispatches
// into exactly one component; every resulting broadcast goes through
// the transport's Broadcaster capability and nothing else.
type Engine struct {
	Store     *RoomStore
	Registry  *Registry
	Directory *UserDirectory
	Roster    *RosterManager
	Playback  *PlaybackController
	Chat      *ChatLog
	Shares    *ScreenShareCoordinator
	Transport core.Broadcaster
}

func NewEngine(store *RoomStore, registry *Registry, directory *UserDirectory, transport core.Broadcaster) *Engine {
	return &Engine{
		Store:     store,
		Registry:  registry,
		Directory: directory,
		Roster:    NewRosterManager(store, registry),
		Playback:  NewPlaybackController(store),
		Chat:      NewChatLog(store),
		Shares:    NewScreenShareCoordinator(store),
		Transport: transport,
	}
}

// CreateRoom is the request/response path behind the REST API.
func (e *Engine) CreateRoom(spec RoomSpec) (*core.RoomState, error) {
	state, err := e.Store.Create(spec)
	if err != nil {
		return nil, err
	}
	e.Directory.AddMembership(spec.HostID, state.Room().ID)
	return state, nil
}

// DeleteRoom succeeds only for the host. On success the room id is
// dropped from every user's membership list.
func (e *Engine) DeleteRoom(roomID domain.RoomID, requester domain.UserID) error {
	if err := e.Store.Delete(roomID, requester); err != nil {
		return err
	}
	e.Directory.DropRoom(roomID)
	return nil
}

// GetRoom is secret-gated for private rooms; the host always passes.
func (e *Engine) GetRoom(roomID domain.RoomID, caller domain.UserID, secret string) (*core.RoomState, error) {
	state, ok := e.Store.Get(roomID)
	if !ok {
		return nil, core.ErrRoomNotFound
	}
	if room := state.Room(); !room.AllowsAccess(caller, secret) {
		return nil, core.ErrForbidden
	}
	return state, nil
}

// VisibleRooms lists all public rooms plus the caller's own private
// ones.
func (e *Engine) VisibleRooms(caller domain.UserID) []*core.RoomState {
	all := e.Store.List()
	out := make([]*core.RoomState, 0, len(all))
	for _, state := range all {
		room := state.Room()
		if !room.IsPrivate || room.HostID == caller {
			out = append(out, state)
		}
	}
	return out
}

// RecentMessages serves the bounded history query, behind the same
// access gate as the room itself.
func (e *Engine) RecentMessages(roomID domain.RoomID, caller domain.UserID, secret string, limit int) ([]domain.Message, error) {
	if _, err := e.GetRoom(roomID, caller, secret); err != nil {
		return nil, err
	}
	return e.Chat.History(roomID, limit)
}

// JoinRoom delivers the full snapshot to the joining connection only,
// announces the participant to everyone else, then refreshes the
// roster for all. The roster broadcast is idempotent and safe to
// over-send on duplicate joins.
func (e *Engine) JoinRoom(conn domain.ConnectionID, roomID domain.RoomID, user domain.User) error {
	// A connection sits in at most one room; joining another leaves
	// the first.
	if _, oldRoom, ok := e.Registry.Resolve(conn); ok && oldRoom != "" && oldRoom != roomID {
		e.LeaveRoom(conn, oldRoom, user.ID)
	}
	res, err := e.Roster.Join(roomID, user, conn)
	if err != nil {
		return err
	}
	e.Directory.AddMembership(user.ID, roomID)
	if res.Added {
		metrics.ParticipantsConnected.Inc()
	}

	state := res.Room
	e.Transport.ToConn(conn, core.RoomSnapshot{
		Type:         core.EventRoomState,
		Room:         state.Room(),
		Participants: state.ParticipantsSnapshot(),
		Messages:     state.RecentMessages(DefaultHistoryLimit),
		Playback:     state.PlaybackSnapshot(),
		Sharer:       state.SharerSnapshot(),
		ServerNowMs:  time.Now().UnixMilli(),
	})
	if res.Added {
		e.Transport.ToRoomExcept(roomID, conn, core.NewParticipantJoined(roomID, res.Participant))
	}
	e.Transport.ToRoom(roomID, core.NewRosterUpdated(roomID, state.ParticipantsSnapshot()))
	return nil
}

// LeaveRoom removes the participant and tells the remaining
// connections. If the leaver held the share slot, the stop goes out
// first.
func (e *Engine) LeaveRoom(conn domain.ConnectionID, roomID domain.RoomID, userID domain.UserID) {
	// A leave naming a room this connection is not bound to is a stray
	// event: drop it without touching the binding or any roster.
	if _, bound, ok := e.Registry.Resolve(conn); !ok || bound != roomID {
		return
	}
	res, ok := e.Roster.Leave(roomID, userID)
	if !ok {
		return
	}
	e.Registry.ClearRoom(conn)
	e.finishLeave(roomID, res)
}

// Disconnect resolves the connection via the reverse index and behaves
// as LeaveRoom for whatever membership it finds.
func (e *Engine) Disconnect(conn domain.ConnectionID) {
	roomID, res, ok := e.Roster.Disconnect(conn)
	if !ok {
		return
	}
	e.finishLeave(roomID, res)
}

func (e *Engine) finishLeave(roomID domain.RoomID, res LeaveResult) {
	metrics.ParticipantsConnected.Dec()
	if res.SharerStopped {
		e.Transport.ToRoom(roomID, core.NewScreenShareStopped(roomID, res.Participant.UserID))
	}
	e.Transport.ToRoom(roomID, core.NewParticipantLeft(roomID, res.Participant))
	e.Transport.ToRoom(roomID, core.NewRosterUpdated(roomID, res.Room.ParticipantsSnapshot()))
}

// SendMessage posts to the room's chat. The caller sees the rejection;
// nobody else does.
func (e *Engine) SendMessage(roomID domain.RoomID, userID domain.UserID, body string) error {
	msg, err := e.Chat.Append(roomID, userID, body)
	if err != nil {
		return err
	}
	e.Transport.ToRoom(roomID, core.NewMessagePosted(roomID, msg))
	return nil
}

// VideoControl applies one playback command and relays the updated
// anchor to the other connections, stamped with the server clock. The
// originator already holds its own state.
func (e *Engine) VideoControl(conn domain.ConnectionID, roomID domain.RoomID, action string, timeSec *float64, url string) error {
	playback, nowMs, err := e.Playback.Apply(roomID, action, timeSec, url)
	if err != nil {
		return err
	}
	e.Transport.ToRoomExcept(roomID, conn, core.NewPlaybackUpdated(roomID, action, playback, nowMs))
	return nil
}

// StartScreenShare hands the slot to userID, preempting any current
// sharer, and refreshes the roster since sharer status shows there.
func (e *Engine) StartScreenShare(roomID domain.RoomID, userID domain.UserID, displayName, quality string, delayHint int) error {
	sharer, err := e.Shares.Start(roomID, userID, displayName, quality, delayHint)
	if err != nil {
		return err
	}
	e.Transport.ToRoom(roomID, core.NewScreenShareStarted(roomID, sharer))
	if state, ok := e.Store.Get(roomID); ok {
		e.Transport.ToRoom(roomID, core.NewRosterUpdated(roomID, state.ParticipantsSnapshot()))
	}
	return nil
}

// StopScreenShare clears the slot if userID owns it. Stale stops do
// nothing at all, not even a broadcast.
func (e *Engine) StopScreenShare(roomID domain.RoomID, userID domain.UserID) error {
	stopped, err := e.Shares.Stop(roomID, userID)
	if err != nil || !stopped {
		return err
	}
	e.Transport.ToRoom(roomID, core.NewScreenShareStopped(roomID, userID))
	if state, ok := e.Store.Get(roomID); ok {
		e.Transport.ToRoom(roomID, core.NewRosterUpdated(roomID, state.ParticipantsSnapshot()))
	}
	return nil
}

// RelayFrame is the hot path: a pure pass-through to the other room
// connections, no inspection, no buffering, no sharer validation.
func (e *Engine) RelayFrame(conn domain.ConnectionID, roomID domain.RoomID, userID domain.UserID, frame, meta json.RawMessage) {
	metrics.FramesRelayed.Inc()
	e.Transport.ToRoomExcept(roomID, conn, core.NewScreenFrame(roomID, userID, frame, meta))
}
