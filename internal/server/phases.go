package server

import (
	"balance-scale/internal/game"
	"balance-scale/internal/protocol"

	"github.com/rs/zerolog/log"
)

const minPlayersToStart = 2

// Start begins the first round. Only the host may start, only from LOBBY,
// and only with at least two active players.
func (s *Server) Start(code, playerID string) {
	s.store.WithRoom(code, func(room *Room) {
		if room.Status != StatusLobby || room.HostID != playerID || room.announcing {
			return
		}
		if room.activeCount() < minPlayersToStart {
			log.Debug().Str("room", code).Msg("start ignored, not enough players")
			return
		}
		s.beginRound(room)
	})
}

// Advance moves the room from RESULTS to SCOREBOARD. Host only.
func (s *Server) Advance(code, playerID string) {
	s.store.WithRoom(code, func(room *Room) {
		if room.Status != StatusResults || room.HostID != playerID {
			return
		}
		s.setStatus(room, StatusScoreboard)
		s.schedule(room, s.cfg.ScoreboardDelay, s.finishScoreboard)
	})
}

// beginRound picks the rules for the upcoming round. Newly added rules are
// announced and entry into PLAYING waits for the announcement delay.
func (s *Server) beginRound(room *Room) {
	rules := game.RulesFor(room.activeCount())
	added := rules.Added(room.LastRoundRules)
	room.LastRoundRules = rules
	room.CurrentRules = rules
	if len(added) == 0 {
		s.enterPlaying(room)
		return
	}
	room.announcing = true
	log.Info().Str("room", room.Code).Strs("rules", added.Names()).Msg("rules changed")
	s.out.Broadcast(room.Code, protocol.MsgRulesChanged, protocol.RulesChanged{Rules: added.Names()})
	s.schedule(room, s.cfg.AnnounceDelay, s.enterPlaying)
}

// enterPlaying opens the next round. When players left during the
// announcement and fewer than two remain active, no round is played: a room
// coming from LOBBY stays there, a room coming from SCOREBOARD ends the game.
func (s *Server) enterPlaying(room *Room) {
	room.announcing = false
	if room.activeCount() < minPlayersToStart {
		s.abandonRound(room)
		return
	}
	room.Round++
	room.CurrentChoices = make(map[string]float64)
	room.LastRoundResult = nil
	room.votingOpen = true
	s.setStatus(room, StatusPlaying)
	s.out.Broadcast(room.Code, protocol.MsgRoundStart, protocol.RoundStart{
		Round:    room.Round,
		Duration: s.cfg.RoundDuration.Milliseconds(),
		Rules:    room.CurrentRules.Names(),
	})
	s.schedule(room, s.cfg.RoundDuration, s.roundTimeout)
}

func (s *Server) abandonRound(room *Room) {
	log.Info().Str("room", room.Code).Int("active", room.activeCount()).Str("status", string(room.Status)).
		Msg("round abandoned, not enough players")
	if room.Status == StatusScoreboard {
		s.setStatus(room, StatusGameOver)
		s.archiveMatch(room)
		return
	}
	// Rules are announced again on the next start.
	room.LastRoundRules = nil
	room.CurrentRules = nil
	s.broadcastState(room)
}

func (s *Server) roundTimeout(room *Room) {
	s.closeVoting(room, "timeout")
}

// finishScoreboard ends the game when at most one player is left, otherwise
// starts the next round.
func (s *Server) finishScoreboard(room *Room) {
	if room.Status != StatusScoreboard {
		return
	}
	if room.activeCount() <= 1 {
		s.setStatus(room, StatusGameOver)
		s.archiveMatch(room)
		return
	}
	s.beginRound(room)
}
