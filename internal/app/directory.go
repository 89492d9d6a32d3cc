package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Cinema/internal/domain"
)

// UserDirectory supplies a verified identity for a client token and
// tracks which rooms each user belongs to. Credentials never reach
// this process; the token is minted by the cookie middleware.
type UserDirectory struct {
	mu      sync.RWMutex
	byToken map[string]*domain.User
	byID    map[domain.UserID]*domain.User
	rooms   map[domain.UserID][]domain.RoomID
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		byToken: make(map[string]*domain.User),
		byID:    make(map[domain.UserID]*domain.User),
		rooms:   make(map[domain.UserID][]domain.RoomID),
	}
}

// GetOrCreate resolves a client token to a user, minting a guest
// identity on first sight.
func (d *UserDirectory) GetOrCreate(token string) domain.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.byToken[token]; ok {
		return *u
	}
	u, _ := domain.NewUser("guest")
	d.byToken[token] = u
	d.byID[u.ID] = u
	log.Info().Str("module", "app.directory").Str("user", string(u.ID)).Msg("created new user")
	return *u
}

// Lookup returns the directory record for a user id, zero-valued if
// unknown.
func (d *UserDirectory) Lookup(id domain.UserID) domain.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if u, ok := d.byID[id]; ok {
		return *u
	}
	return domain.User{ID: id, DisplayName: "guest"}
}

func (d *UserDirectory) UpdateProfile(token, displayName, avatarRef string) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byToken[token]
	if !ok {
		u, _ = domain.NewUser("guest")
		d.byToken[token] = u
		d.byID[u.ID] = u
	}
	if displayName != "" {
		if err := u.SetDisplayName(displayName); err != nil {
			return domain.User{}, err
		}
	}
	if avatarRef != "" {
		u.AvatarRef = avatarRef
	}
	log.Info().Str("module", "app.directory").Str("user", string(u.ID)).Str("name", u.DisplayName).Msg("profile updated")
	return *u, nil
}

// AddMembership records a room on the user's membership list.
// Idempotent.
func (d *UserDirectory) AddMembership(user domain.UserID, room domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.rooms[user] {
		if id == room {
			return
		}
	}
	d.rooms[user] = append(d.rooms[user], room)
}

func (d *UserDirectory) Memberships(user domain.UserID) []domain.RoomID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.RoomID, len(d.rooms[user]))
	copy(out, d.rooms[user])
	return out
}

// DropRoom removes the room id from every user's membership list after
// a host deletion. An O(users) scan; acceptable at in-memory scale,
// index by owner if the user count grows.
func (d *UserDirectory) DropRoom(room domain.RoomID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for user, list := range d.rooms {
		for i, id := range list {
			if id == room {
				d.rooms[user] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}
