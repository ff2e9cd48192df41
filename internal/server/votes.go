package server

import (
	"math"

	"balance-scale/internal/protocol"

	"github.com/rs/zerolog/log"
)

const (
	minChoice = 0
	maxChoice = 100
)

func validChoice(value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	return value >= minChoice && value <= maxChoice
}

// Submit records a player's number for the current round. Submissions out of
// phase, from non-members, from eliminated players or outside [0, 100] are
// ignored. A later submission in the same round replaces the earlier one.
func (s *Server) Submit(code, playerID string, value float64) {
	if !validChoice(value) {
		log.Debug().Str("room", code).Str("player", playerID).Float64("value", value).Msg("submission out of range")
		return
	}
	s.store.WithRoom(code, func(room *Room) {
		if room.Status != StatusPlaying || !room.votingOpen {
			return
		}
		player, ok := room.FindPlayer(playerID)
		if !ok || player.IsEliminated {
			return
		}
		room.CurrentChoices[playerID] = value
		s.out.Broadcast(code, protocol.MsgPlayerVoted, protocol.PlayerVoted{PlayerID: playerID})
		s.checkRoundComplete(room)
	})
}

// checkRoundComplete closes voting early once every active player has a
// choice recorded.
func (s *Server) checkRoundComplete(room *Room) {
	active := 0
	voted := 0
	for _, player := range room.Players {
		if player.IsEliminated {
			continue
		}
		active++
		if _, ok := room.CurrentChoices[player.ID]; ok {
			voted++
		}
	}
	if voted < active {
		return
	}
	s.cancelTimer(room)
	s.closeVoting(room, "all votes in")
}
