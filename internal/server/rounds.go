package server

import (
	"balance-scale/internal/game"
	"balance-scale/internal/protocol"

	"github.com/rs/zerolog/log"
)

// closeVoting resolves the current round. The record is computed at once;
// the flip to RESULTS waits for the results delay.
func (s *Server) closeVoting(room *Room, reason string) {
	if room.Status != StatusPlaying || !room.votingOpen {
		return
	}
	room.votingOpen = false
	s.out.Broadcast(room.Code, protocol.MsgVotesClosed, protocol.VotesClosed{Round: room.Round})

	active := room.ActivePlayers()
	if len(active) == 0 {
		room.Status = StatusLobby
		room.CurrentChoices = make(map[string]float64)
		log.Info().Str("room", room.Code).Int("round", room.Round).Msg("no active players, back to lobby")
		s.broadcastState(room)
		return
	}

	entrants := make([]game.Entrant, 0, len(active))
	for _, player := range active {
		choice := game.Abstained()
		if value, ok := room.CurrentChoices[player.ID]; ok {
			choice = game.Submitted(value)
		}
		entrants = append(entrants, game.Entrant{
			ID:     player.ID,
			Name:   player.Name,
			Score:  player.Score,
			Choice: choice,
		})
	}
	result, settlements := game.Resolve(entrants)
	for _, settled := range settlements {
		player, ok := room.FindPlayer(settled.PlayerID)
		if !ok {
			continue
		}
		player.Score = settled.Score
		if settled.Eliminated {
			player.IsEliminated = true
		}
	}
	room.LastRoundResult = &result

	log.Info().
		Str("room", room.Code).
		Int("round", room.Round).
		Str("reason", reason).
		Str("target", result.Target).
		Str("winner", result.WinnerName).
		Strs("eliminated", result.EliminatedPlayers).
		Msg("round resolved")

	s.schedule(room, s.cfg.ResultsDelay, s.showResults)
}

func (s *Server) showResults(room *Room) {
	if room.Status != StatusPlaying {
		return
	}
	s.setStatus(room, StatusResults)
}

func (s *Server) setStatus(room *Room, status Status) {
	from := room.Status
	room.Status = status
	log.Info().Str("room", room.Code).Str("from", string(from)).Str("to", string(status)).Int("round", room.Round).Msg("room status changed")
	s.broadcastState(room)
}
