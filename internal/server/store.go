package server

import (
	"fmt"
	"sort"
	"sync"
)

type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// EnsureRoom returns the room for code, creating it with creatorID as host
// when none exists.
func (s *Store) EnsureRoom(code, creatorID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[code]; ok {
		return room
	}
	room := &Room{
		Code:           code,
		Status:         StatusLobby,
		HostID:         creatorID,
		CurrentChoices: make(map[string]float64),
	}
	s.rooms[code] = room
	return room
}

func (s *Store) GetRoom(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	return room, ok
}

// WithRoom runs fn while holding the room's lock. It reports false when the
// room does not exist or was deleted before the lock was acquired.
func (s *Store) WithRoom(code string, fn func(room *Room)) bool {
	room, ok := s.GetRoom(code)
	if !ok {
		return false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return false
	}
	fn(room)
	return true
}

// WithEnsuredRoom is WithRoom for a room that is created on demand.
func (s *Store) WithEnsuredRoom(code, creatorID string, fn func(room *Room)) {
	for {
		room := s.EnsureRoom(code, creatorID)
		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}
		fn(room)
		room.mu.Unlock()
		return
	}
}

// deleteRoom must be called with the room's lock held.
func (s *Store) deleteRoom(room *Room) {
	room.closed = true
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.rooms[room.Code]; ok && current == room {
		delete(s.rooms, room.Code)
	}
}

func (s *Store) Codes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *Store) ListRoomSummaries() []RoomSummary {
	list := make([]RoomSummary, 0)
	for _, code := range s.Codes() {
		s.WithRoom(code, func(room *Room) {
			list = append(list, RoomSummary{
				Code:    room.Code,
				Status:  room.Status,
				Players: len(room.Players),
				Active:  room.activeCount(),
				Round:   room.Round,
			})
		})
	}
	return list
}

// maxNameLength bounds display names in runes; archived names fit the
// matches table columns.
const maxNameLength = 32

// AddPlayer inserts a new member. It reports false when id is already a member.
// Names longer than maxNameLength are truncated.
func (r *Room) AddPlayer(id, name string) (*Player, bool) {
	if _, ok := r.FindPlayer(id); ok {
		return nil, false
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	if name == "" {
		name = fmt.Sprintf("P%d", len(r.Players)+1)
	}
	player := &Player{ID: id, Name: name}
	r.Players = append(r.Players, player)
	return player, true
}

// RemovePlayer removes a member. When the host leaves, the earliest-joined
// remaining member becomes host.
func (r *Room) RemovePlayer(id string) (*Player, bool) {
	for i, player := range r.Players {
		if player.ID != id {
			continue
		}
		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		delete(r.CurrentChoices, id)
		if r.HostID == id && len(r.Players) > 0 {
			r.HostID = r.Players[0].ID
		}
		return player, true
	}
	return nil, false
}

func (r *Room) FindPlayer(id string) (*Player, bool) {
	for _, player := range r.Players {
		if player.ID == id {
			return player, true
		}
	}
	return nil, false
}

func (r *Room) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(r.Players))
	for _, player := range r.Players {
		if !player.IsEliminated {
			active = append(active, player)
		}
	}
	return active
}

func (r *Room) activeCount() int {
	count := 0
	for _, player := range r.Players {
		if !player.IsEliminated {
			count++
		}
	}
	return count
}

func (r *Room) View() RoomView {
	players := make([]Player, 0, len(r.Players))
	for _, player := range r.Players {
		players = append(players, *player)
	}
	return RoomView{
		Code:            r.Code,
		Status:          r.Status,
		HostID:          r.HostID,
		Round:           r.Round,
		Players:         players,
		LastRoundResult: r.LastRoundResult,
	}
}
