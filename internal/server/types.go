package server

import (
	"sync"
	"time"

	"balance-scale/internal/game"
)

type Status string

const (
	StatusLobby      Status = "LOBBY"
	StatusPlaying    Status = "PLAYING"
	StatusResults    Status = "RESULTS"
	StatusScoreboard Status = "SCOREBOARD"
	StatusGameOver   Status = "GAME_OVER"
)

type RoomSummary struct {
	Code    string `json:"code"`
	Status  Status `json:"status"`
	Players int    `json:"players"`
	Active  int    `json:"active"`
	Round   int    `json:"round"`
}

type Player struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	IsEliminated bool    `json:"isEliminated"`
}

// Room is one game session. Every field is guarded by mu; callers reach a
// room through Store.WithRoom.
type Room struct {
	mu sync.Mutex

	Code            string
	Status          Status
	HostID          string
	Round           int
	Players         []*Player
	CurrentChoices  map[string]float64
	CurrentRules    game.RuleSet
	LastRoundResult *game.Result
	LastRoundRules  game.RuleSet

	votingOpen bool
	announcing bool
	closed     bool
	timer      *time.Timer
	timerToken uint64
}

// RoomView is the state broadcast to clients.
type RoomView struct {
	Code            string       `json:"code"`
	Status          Status       `json:"status"`
	HostID          string       `json:"hostId"`
	Round           int          `json:"round"`
	Players         []Player     `json:"players"`
	LastRoundResult *game.Result `json:"lastRoundResult"`
}
