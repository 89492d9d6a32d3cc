package app

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dkeye/Cinema/internal/core"
)

func TestRoomStore_Create(t *testing.T) {
	tests := []struct {
		name    string
		spec    RoomSpec
		wantErr error
	}{
		{
			name: "public room",
			spec: RoomSpec{Name: "movie night", HostID: "h1", HostName: "Host"},
		},
		{
			name: "private room with secret",
			spec: RoomSpec{Name: "vip", HostID: "h1", IsPrivate: true, AccessSecret: "abc123"},
		},
		{
			name:    "missing name",
			spec:    RoomSpec{HostID: "h1"},
			wantErr: core.ErrValidation,
		},
		{
			name:    "whitespace name",
			spec:    RoomSpec{Name: "   ", HostID: "h1"},
			wantErr: core.ErrValidation,
		},
		{
			name:    "private without secret",
			spec:    RoomSpec{Name: "vip", HostID: "h1", IsPrivate: true},
			wantErr: core.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewRoomStore()
			state, err := store.Create(tt.spec)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			room := state.Room()
			if room.ID == "" {
				t.Error("room id should be assigned")
			}
			if _, ok := store.Get(room.ID); !ok {
				t.Error("created room should resolve via Get")
			}
		})
	}
}

func TestRoomStore_CreateTruncatesNameOnRuneBoundary(t *testing.T) {
	store := NewRoomStore()
	state, err := store.Create(RoomSpec{Name: strings.Repeat("ü", MaxRoomNameLen+10), HostID: "h1"})
	if err != nil {
		t.Fatal(err)
	}
	name := state.Room().Name
	if !utf8.ValidString(name) {
		t.Errorf("truncated name %q is not valid UTF-8", name)
	}
	if got := utf8.RuneCountInString(name); got != MaxRoomNameLen {
		t.Errorf("rune count = %d, want %d", got, MaxRoomNameLen)
	}
}

func TestRoomStore_Delete(t *testing.T) {
	store := NewRoomStore()
	state, err := store.Create(RoomSpec{Name: "movie night", HostID: "host"})
	if err != nil {
		t.Fatal(err)
	}
	id := state.Room().ID

	if err := store.Delete(id, "stranger"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("non-host delete: err = %v, want ErrForbidden", err)
	}
	if _, ok := store.Get(id); !ok {
		t.Fatal("room should survive a forbidden delete")
	}

	if err := store.Delete(id, "host"); err != nil {
		t.Fatalf("host delete: %v", err)
	}
	if _, ok := store.Get(id); ok {
		t.Error("room should no longer resolve after delete")
	}
	if err := store.Delete(id, "host"); !errors.Is(err, core.ErrRoomNotFound) {
		t.Errorf("repeat delete: err = %v, want ErrRoomNotFound", err)
	}
}
