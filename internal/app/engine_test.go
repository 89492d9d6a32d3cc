package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Cinema/internal/core"
	"github.com/dkeye/Cinema/internal/domain"
)

type sentEvent struct {
	target string // "room", "except", "conn"
	roomID domain.RoomID
	conn   domain.ConnectionID
	event  any
}

// fakeTransport records everything the engine broadcasts, in order.
type fakeTransport struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeTransport) ToRoom(roomID domain.RoomID, event any) {
	f.record(sentEvent{target: "room", roomID: roomID, event: event})
}

func (f *fakeTransport) ToRoomExcept(roomID domain.RoomID, except domain.ConnectionID, event any) {
	f.record(sentEvent{target: "except", roomID: roomID, conn: except, event: event})
}

func (f *fakeTransport) ToConn(conn domain.ConnectionID, event any) {
	f.record(sentEvent{target: "conn", conn: conn, event: event})
}

func (f *fakeTransport) record(e sentEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeTransport) drain() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil
	return out
}

func eventType(e any) string {
	switch v := e.(type) {
	case core.RoomSnapshot:
		return v.Type
	case core.ParticipantEvent:
		return v.Type
	case core.RosterEvent:
		return v.Type
	case core.MessageEvent:
		return v.Type
	case core.PlaybackEvent:
		return v.Type
	case core.ScreenShareEvent:
		return v.Type
	case core.ScreenFrameEvent:
		return v.Type
	default:
		return ""
	}
}

func newEngineFixture(t *testing.T) (*Engine, *fakeTransport, domain.RoomID) {
	t.Helper()
	transport := &fakeTransport{}
	engine := NewEngine(NewRoomStore(), NewRegistry(), NewUserDirectory(), transport)
	state, err := engine.CreateRoom(RoomSpec{Name: "movie night", HostID: "host", HostName: "Host"})
	if err != nil {
		t.Fatal(err)
	}
	return engine, transport, state.Room().ID
}

func join(t *testing.T, e *Engine, roomID domain.RoomID, user domain.UserID, conn domain.ConnectionID) {
	t.Helper()
	if _, _, ok := e.Registry.Resolve(conn); !ok {
		e.Registry.Bind(conn, user)
	}
	if err := e.JoinRoom(conn, roomID, domain.User{ID: user, DisplayName: string(user)}); err != nil {
		t.Fatalf("JoinRoom(%s): %v", user, err)
	}
}

func TestEngine_JoinBroadcasts(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	transport.drain()

	join(t, engine, roomID, "bob", "c2")
	events := transport.drain()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}

	// Snapshot only to the joiner.
	if events[0].target != "conn" || events[0].conn != "c2" || eventType(events[0].event) != core.EventRoomState {
		t.Errorf("events[0] = %+v, want room-state to c2", events[0])
	}
	snap := events[0].event.(core.RoomSnapshot)
	if len(snap.Participants) != 2 {
		t.Errorf("snapshot roster = %d, want 2", len(snap.Participants))
	}

	// Announcement to everyone but the joiner.
	if events[1].target != "except" || events[1].conn != "c2" || eventType(events[1].event) != core.EventParticipantJoined {
		t.Errorf("events[1] = %+v, want participant-joined except c2", events[1])
	}

	// Roster refresh to the whole room.
	if events[2].target != "room" || eventType(events[2].event) != core.EventRosterUpdated {
		t.Errorf("events[2] = %+v, want roster-updated to room", events[2])
	}
}

func TestEngine_DuplicateJoinSingleRow(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	transport.drain()

	join(t, engine, roomID, "alice", "c2")
	events := transport.drain()

	state, _ := engine.Store.Get(roomID)
	if got := state.ParticipantCount(); got != 1 {
		t.Errorf("ParticipantCount() = %d, want 1", got)
	}
	// Snapshot still delivered, no participant-joined announcement.
	for _, e := range events {
		if eventType(e.event) == core.EventParticipantJoined {
			t.Error("duplicate join must not announce a new participant")
		}
	}
}

func TestEngine_JoinUnknownRoom(t *testing.T) {
	engine, _, _ := newEngineFixture(t)
	engine.Registry.Bind("c9", "alice")
	err := engine.JoinRoom("c9", "nope", domain.User{ID: "alice", DisplayName: "alice"})
	if !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestEngine_LeaveTwiceSecondIsNoop(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	join(t, engine, roomID, "bob", "c2")
	transport.drain()

	engine.LeaveRoom("c1", roomID, "alice")
	if events := transport.drain(); len(events) == 0 {
		t.Fatal("first leave should broadcast")
	}

	engine.LeaveRoom("c1", roomID, "alice")
	if events := transport.drain(); len(events) != 0 {
		t.Errorf("second leave broadcast %d events, want 0", len(events))
	}
}

func TestEngine_LeaveWrongRoomKeepsBinding(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	transport.drain()

	// A leave naming a room the connection never joined is a stray
	// event: nothing moves, nothing is broadcast.
	engine.LeaveRoom("c1", "nope", "alice")
	if events := transport.drain(); len(events) != 0 {
		t.Errorf("stray leave broadcast %d events, want 0", len(events))
	}
	if _, bound, ok := engine.Registry.Resolve("c1"); !ok || bound != roomID {
		t.Errorf("binding for c1 = %q, want %q untouched", bound, roomID)
	}
	state, _ := engine.Store.Get(roomID)
	if !state.HasParticipant("alice") {
		t.Error("stray leave must not touch the roster")
	}

	// The connection still resolves, so a later disconnect cleans up.
	engine.Disconnect("c1")
	if state.HasParticipant("alice") {
		t.Error("disconnect after stray leave should remove alice")
	}
}

func TestEngine_SharerLeaveStopsBeforeLeft(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	join(t, engine, roomID, "bob", "c2")
	if err := engine.StartScreenShare(roomID, "alice", "alice", "hd", 0); err != nil {
		t.Fatal(err)
	}
	transport.drain()

	engine.LeaveRoom("c1", roomID, "alice")
	events := transport.drain()
	if len(events) != 3 {
		t.Fatalf("got %d events, want stop+left+roster: %+v", len(events), events)
	}
	want := []string{core.EventScreenShareStopped, core.EventParticipantLeft, core.EventRosterUpdated}
	for i, typ := range want {
		if eventType(events[i].event) != typ {
			t.Errorf("events[%d] = %s, want %s", i, eventType(events[i].event), typ)
		}
	}
}

func TestEngine_DisconnectResolvesReverseIndex(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	join(t, engine, roomID, "bob", "c2")
	transport.drain()

	engine.Disconnect("c1")
	state, _ := engine.Store.Get(roomID)
	if state.HasParticipant("alice") {
		t.Error("disconnect should remove alice's roster row")
	}
	events := transport.drain()
	want := []string{core.EventParticipantLeft, core.EventRosterUpdated}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, typ := range want {
		if eventType(events[i].event) != typ {
			t.Errorf("events[%d] = %s, want %s", i, eventType(events[i].event), typ)
		}
	}

	// The index entry is gone; a repeat disconnect is silent.
	engine.Disconnect("c1")
	if events := transport.drain(); len(events) != 0 {
		t.Errorf("repeat disconnect broadcast %d events, want 0", len(events))
	}
}

func TestEngine_SharePreemptionScenario(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	join(t, engine, roomID, "bob", "c2")
	transport.drain()

	if err := engine.StartScreenShare(roomID, "alice", "alice", "", 0); err != nil {
		t.Fatal(err)
	}
	if err := engine.StartScreenShare(roomID, "bob", "bob", "", 0); err != nil {
		t.Fatal(err)
	}

	state, _ := engine.Store.Get(roomID)
	sharer := state.SharerSnapshot()
	if sharer == nil || sharer.UserID != "bob" {
		t.Fatalf("sharer = %+v, want bob", sharer)
	}
	for _, p := range state.ParticipantsSnapshot() {
		if p.UserID == "alice" && p.IsSharingScreen {
			t.Error("preempted sharer should have IsSharingScreen = false")
		}
	}

	// No dedicated preemption event: just started + roster per start.
	for _, e := range transport.drain() {
		typ := eventType(e.event)
		if typ != core.EventScreenShareStarted && typ != core.EventRosterUpdated {
			t.Errorf("unexpected event %s during preemption", typ)
		}
	}
}

func TestEngine_SendMessage(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	transport.drain()

	if err := engine.SendMessage(roomID, "alice", "hello"); err != nil {
		t.Fatal(err)
	}
	events := transport.drain()
	if len(events) != 1 || events[0].target != "room" || eventType(events[0].event) != core.EventMessagePosted {
		t.Errorf("events = %+v, want one message-posted to room", events)
	}

	// Rejection reaches the caller only, nothing is broadcast.
	if err := engine.SendMessage(roomID, "ghost", "boo"); !errors.Is(err, core.ErrSenderNotInRoom) {
		t.Errorf("err = %v, want ErrSenderNotInRoom", err)
	}
	if events := transport.drain(); len(events) != 0 {
		t.Errorf("rejected message broadcast %d events, want 0", len(events))
	}
}

func TestEngine_VideoControlExcludesOriginator(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	transport.drain()

	at := 10.0
	if err := engine.VideoControl("c1", roomID, core.ActionPlay, &at, ""); err != nil {
		t.Fatal(err)
	}
	events := transport.drain()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].target != "except" || events[0].conn != "c1" {
		t.Errorf("events[0] = %+v, want playback-updated except c1", events[0])
	}
	pe := events[0].event.(core.PlaybackEvent)
	if pe.ServerNowMs == 0 {
		t.Error("playback event must carry the server clock")
	}
}

func TestEngine_StrayControlForDeletedRoomIsDropped(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	if err := engine.DeleteRoom(roomID, "host"); err != nil {
		t.Fatal(err)
	}

	at := 3.0
	if err := engine.VideoControl("c1", roomID, core.ActionPlay, &at, ""); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
	if events := transport.drain(); len(events) != 0 {
		t.Errorf("stray control broadcast %d events, want 0", len(events))
	}
}

func TestEngine_DeleteRoomDropsMemberships(t *testing.T) {
	engine, _, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")

	if got := engine.Directory.Memberships("alice"); len(got) != 1 {
		t.Fatalf("memberships = %v, want the joined room", got)
	}
	if err := engine.DeleteRoom(roomID, "host"); err != nil {
		t.Fatal(err)
	}
	if got := engine.Directory.Memberships("alice"); len(got) != 0 {
		t.Errorf("memberships = %v, want empty after host deletion", got)
	}
	if got := engine.Directory.Memberships("host"); len(got) != 0 {
		t.Errorf("host memberships = %v, want empty after deletion", got)
	}
}

func TestEngine_PrivateRoomAccess(t *testing.T) {
	transport := &fakeTransport{}
	engine := NewEngine(NewRoomStore(), NewRegistry(), NewUserDirectory(), transport)
	state, err := engine.CreateRoom(RoomSpec{Name: "vip", HostID: "host", IsPrivate: true, AccessSecret: "abc123"})
	if err != nil {
		t.Fatal(err)
	}
	roomID := state.Room().ID

	tests := []struct {
		name    string
		caller  domain.UserID
		secret  string
		wantErr error
	}{
		{name: "no secret", caller: "u1", secret: "", wantErr: core.ErrForbidden},
		{name: "wrong secret", caller: "u1", secret: "oops", wantErr: core.ErrForbidden},
		{name: "matching secret", caller: "u1", secret: "abc123"},
		{name: "host needs no secret", caller: "host", secret: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.GetRoom(roomID, tt.caller, tt.secret)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEngine_VisibleRooms(t *testing.T) {
	transport := &fakeTransport{}
	engine := NewEngine(NewRoomStore(), NewRegistry(), NewUserDirectory(), transport)
	mustCreate := func(spec RoomSpec) {
		if _, err := engine.CreateRoom(spec); err != nil {
			t.Fatal(err)
		}
	}
	mustCreate(RoomSpec{Name: "public", HostID: "host"})
	mustCreate(RoomSpec{Name: "mine", HostID: "alice", IsPrivate: true, AccessSecret: "s"})
	mustCreate(RoomSpec{Name: "theirs", HostID: "bob", IsPrivate: true, AccessSecret: "s"})

	visible := engine.VisibleRooms("alice")
	if len(visible) != 2 {
		t.Fatalf("visible = %d rooms, want public + own private", len(visible))
	}
	for _, state := range visible {
		room := state.Room()
		if room.IsPrivate && room.HostID != "alice" {
			t.Errorf("room %q should not be visible to alice", room.Name)
		}
	}
}

func TestEngine_RelayFrame(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	join(t, engine, roomID, "alice", "c1")
	join(t, engine, roomID, "bob", "c2")
	transport.drain()

	engine.RelayFrame("c1", roomID, "alice", []byte(`"frame-bytes"`), nil)
	events := transport.drain()
	if len(events) != 1 || events[0].target != "except" || events[0].conn != "c1" {
		t.Fatalf("events = %+v, want one relay except c1", events)
	}
	if eventType(events[0].event) != core.EventScreenFrame {
		t.Errorf("type = %s, want screen-frame", eventType(events[0].event))
	}
}

func TestEngine_JoinSwitchesRoom(t *testing.T) {
	engine, transport, roomID := newEngineFixture(t)
	other, err := engine.CreateRoom(RoomSpec{Name: "second", HostID: "host"})
	if err != nil {
		t.Fatal(err)
	}
	join(t, engine, roomID, "alice", "c1")
	transport.drain()

	join(t, engine, other.Room().ID, "alice", "c1")
	first, _ := engine.Store.Get(roomID)
	if first.HasParticipant("alice") {
		t.Error("joining a second room should leave the first")
	}
	if !other.HasParticipant("alice") {
		t.Error("alice should be on the second room's roster")
	}
}
