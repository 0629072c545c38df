package store

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"kittenbomb/internal/game"
)

const (
	// roomCodeLength is the length of generated room codes
	roomCodeLength = 6

	// roomCodeChars are the characters used for room codes (excluding ambiguous chars)
	roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// RoomStore manages room storage
type RoomStore struct {
	rooms map[string]*game.Room
	mu    sync.RWMutex
}

// NewRoomStore creates a new room store
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*game.Room),
	}
}

// generateRoomCode creates a random room code
func generateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range roomCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(roomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = roomCodeChars[rand.Intn(len(roomCodeChars))]
			continue
		}
		code[i] = roomCodeChars[n.Int64()]
	}
	return string(code)
}

// Create makes a new room under a code no live room is using and
// registers it.
func (s *RoomStore) Create(hostID, hostName string) *game.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for {
		code = generateRoomCode()
		if _, exists := s.rooms[code]; !exists {
			break
		}
	}
	room := game.NewRoom(code, hostID, hostName)
	s.rooms[code] = room
	return room
}

// Get retrieves a room by code
func (s *RoomStore) Get(code string) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, exists := s.rooms[code]
	return room, exists
}

// Remove deletes a room
func (s *RoomStore) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Count returns the number of live rooms
func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// All returns a snapshot of the live rooms
func (s *RoomStore) All() []*game.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*game.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Cleanup removes dead rooms and returns the codes it dropped:
//
//   - rooms with no players
//   - ended games past the grace period, or ended with nobody connected
//   - rooms idle longer than idleTimeout
//
// now is a parameter so the policy is testable.
//
// The whole pass holds the store lock so a room revived between
// inspection and deletion cannot be reaped. Lock order is store before
// room; no caller takes them the other way around.
func (s *RoomStore) Cleanup(now time.Time, endedGrace, idleTimeout time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dead []string
	for code, room := range s.rooms {
		if shouldReap(room, now, endedGrace, idleTimeout) {
			dead = append(dead, code)
		}
	}
	for _, code := range dead {
		delete(s.rooms, code)
	}
	return dead
}

func shouldReap(room *game.Room, now time.Time, endedGrace, idleTimeout time.Duration) bool {
	if room.NumPlayers() == 0 {
		return true
	}
	_, lastActivity, ended := room.Times()
	if room.CurrentPhase() == game.PhaseGameEnd {
		if !ended.IsZero() && now.Sub(ended) > endedGrace {
			return true
		}
		if !room.AnyConnected() {
			return true
		}
	}
	return now.Sub(lastActivity) > idleTimeout
}
