package core

import (
	"sync"
	"time"

	"github.com/dkeye/Cinema/internal/domain"
)

// Chat retention: appending past the cap truncates to the most recent
// trim target before the new message lands. Batched eviction, not a
// sliding window.
const (
	ChatHistoryCap  = 1000
	ChatHistoryTrim = 500
)

// RoomState is the live, lock-guarded aggregate of one room. Every
// mutation of a room's fields happens under its single mutex, which is
// what keeps concurrently arriving events safe without a global lock.
// Rooms are independent; no operation ever takes two room locks.
type RoomState struct {
	mu           sync.RWMutex
	room         domain.Room
	playback     domain.Playback
	participants []domain.Participant
	messages     []domain.Message
	sharer       *domain.ScreenSharer
}

func NewRoomState(room domain.Room) *RoomState {
	return &RoomState{room: room}
}

// Room returns the descriptive fields. They are immutable after
// creation, so no lock is needed.
func (s *RoomState) Room() domain.Room { return s.room }

func (s *RoomState) PlaybackSnapshot() domain.Playback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playback
}

func (s *RoomState) ParticipantCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

// ParticipantsSnapshot preserves join order; the roster display
// depends on it.
func (s *RoomState) ParticipantsSnapshot() []domain.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

func (s *RoomState) SharerSnapshot() *domain.ScreenSharer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sharer == nil {
		return nil
	}
	cp := *s.sharer
	return &cp
}

// AddParticipant appends a roster row unless the user already has one.
// Duplicate joins from stale reconnects keep the existing row
// (first-match idempotence); reports whether a row was added.
func (s *RoomState) AddParticipant(p domain.Participant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.participants {
		if s.participants[i].UserID == p.UserID {
			return false
		}
	}
	s.participants = append(s.participants, p)
	return true
}

// RemoveParticipant drops the user's roster row. If the user held the
// screen-share slot it is cleared first and reported so the caller can
// broadcast the stop before the leave. No-op if the user is absent.
func (s *RoomState) RemoveParticipant(userID domain.UserID) (domain.Participant, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(userID, "", false)
}

// RemoveParticipantConn is the disconnect path: the row is matched on
// connection identity as well, so a stale disconnect for an old
// connection cannot evict a newer connection of the same user.
func (s *RoomState) RemoveParticipantConn(userID domain.UserID, conn domain.ConnectionID) (domain.Participant, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(userID, conn, true)
}

func (s *RoomState) removeLocked(userID domain.UserID, conn domain.ConnectionID, matchConn bool) (domain.Participant, bool, bool) {
	for i := range s.participants {
		p := s.participants[i]
		if p.UserID != userID {
			continue
		}
		if matchConn && p.ConnectionID != conn {
			continue
		}
		sharerCleared := false
		if s.sharer != nil && s.sharer.UserID == userID {
			s.sharer = nil
			sharerCleared = true
		}
		s.participants = append(s.participants[:i], s.participants[i+1:]...)
		return p, sharerCleared, true
	}
	return domain.Participant{}, false, false
}

// AppendMessage stores a chat message attributed to the sender's
// current roster row. Senders who already left are rejected, not
// silently dropped.
func (s *RoomState) AppendMessage(userID domain.UserID, id, body string, at time.Time) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sender *domain.Participant
	for i := range s.participants {
		if s.participants[i].UserID == userID {
			sender = &s.participants[i]
			break
		}
	}
	if sender == nil {
		return domain.Message{}, ErrSenderNotInRoom
	}
	if len(s.messages)+1 > ChatHistoryCap {
		kept := s.messages[len(s.messages)-ChatHistoryTrim:]
		s.messages = append(make([]domain.Message, 0, ChatHistoryTrim+1), kept...)
	}
	msg := domain.Message{
		ID:          id,
		UserID:      userID,
		DisplayName: sender.DisplayName,
		AvatarRef:   sender.AvatarRef,
		Body:        body,
		CreatedAt:   at,
	}
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *RoomState) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// RecentMessages returns up to limit most recent messages in
// chronological order.
func (s *RoomState) RecentMessages(limit int) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.messages) {
		limit = len(s.messages)
	}
	tail := s.messages[len(s.messages)-limit:]
	out := make([]domain.Message, len(tail))
	copy(out, tail)
	return out
}

// Playback control actions.
const (
	ActionPlay        = "play"
	ActionPause       = "pause"
	ActionSeek        = "seek"
	ActionChangeVideo = "change-video"
)

// ApplyControl mutates the playback anchor per the last command's
// state. timeSec is optional for play/pause (absent means "capture the
// current extrapolated position"), required for seek.
func (s *RoomState) ApplyControl(action string, timeSec *float64, url string, nowMs int64) (domain.Playback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch action {
	case ActionPlay:
		s.playback.PositionSeconds = s.capturedLocked(timeSec, nowMs)
		s.playback.IsPlaying = true
	case ActionPause:
		s.playback.PositionSeconds = s.capturedLocked(timeSec, nowMs)
		s.playback.IsPlaying = false
	case ActionSeek:
		if timeSec == nil {
			return s.playback, false
		}
		s.playback.PositionSeconds = *timeSec
	case ActionChangeVideo:
		s.playback.VideoRef = url
		s.playback.IsPlaying = false
		s.playback.PositionSeconds = 0
	default:
		return s.playback, false
	}
	s.playback.LastUpdateMs = nowMs
	return s.playback, true
}

func (s *RoomState) capturedLocked(timeSec *float64, nowMs int64) float64 {
	if timeSec != nil {
		return *timeSec
	}
	return s.playback.EstimatedPosition(nowMs)
}

// StartShare takes the screen-share slot for userID. An already-active
// sharer is replaced outright, last writer wins; its roster flag flips
// to false. The sharer must currently be on the roster.
func (s *RoomState) StartShare(sharer domain.ScreenSharer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.participants {
		if s.participants[i].UserID == sharer.UserID {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for i := range s.participants {
		s.participants[i].IsSharingScreen = s.participants[i].UserID == sharer.UserID
	}
	s.sharer = &sharer
	return true
}

// StopShare clears the slot only if it currently belongs to userID; a
// stale stop from a displaced sharer is a safe no-op.
func (s *RoomState) StopShare(userID domain.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sharer == nil || s.sharer.UserID != userID {
		return false
	}
	s.sharer = nil
	for i := range s.participants {
		if s.participants[i].UserID == userID {
			s.participants[i].IsSharingScreen = false
		}
	}
	return true
}

func (s *RoomState) HasParticipant(userID domain.UserID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.participants {
		if s.participants[i].UserID == userID {
			return true
		}
	}
	return false
}
