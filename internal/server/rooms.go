package server

import (
	"balance-scale/internal/protocol"

	"github.com/rs/zerolog/log"
)

// Join adds the connection to the room, creating the room with the
// connection as host when the code is new. Joining is allowed in any status.
func (s *Server) Join(code, playerID, name string) {
	s.store.WithEnsuredRoom(code, playerID, func(room *Room) {
		player, ok := room.AddPlayer(playerID, name)
		if !ok {
			return
		}
		log.Info().Str("room", code).Str("player", playerID).Str("name", player.Name).
			Str("status", string(room.Status)).Msg("player joined")
		s.broadcastState(room)
	})
}

// Disconnect removes the connection from the room. The last member leaving
// deletes the room and stops its pending timer.
func (s *Server) Disconnect(code, playerID string) {
	s.store.WithRoom(code, func(room *Room) {
		player, ok := room.RemovePlayer(playerID)
		if !ok {
			return
		}
		if len(room.Players) == 0 {
			s.cancelTimer(room)
			s.store.deleteRoom(room)
			log.Info().Str("room", code).Msg("room closed")
			return
		}
		log.Info().Str("room", code).Str("player", playerID).Str("host", room.HostID).Msg("player left")
		s.broadcastState(room)
		s.out.Broadcast(code, protocol.MsgSystem, protocol.SystemNotice{
			Text: player.Name + " has left the game.",
		})
		if room.Status == StatusPlaying && room.votingOpen {
			s.checkRoundComplete(room)
		}
	})
}

func (s *Server) broadcastState(room *Room) {
	s.out.Broadcast(room.Code, protocol.MsgState, room.View())
}

// RoomView returns the current broadcast view of a room.
func (s *Server) RoomView(code string) (RoomView, bool) {
	var view RoomView
	ok := s.store.WithRoom(code, func(room *Room) {
		view = room.View()
	})
	return view, ok
}
