package server

import (
	"time"

	"github.com/rs/zerolog/log"
)

// schedule arms the room's single pending continuation, replacing any
// earlier one. The continuation holds only the room code and a token; when
// it fires it re-fetches the room and does nothing if the room is gone or a
// later schedule or cancel has replaced the token. Callers hold the room lock.
func (s *Server) schedule(room *Room, delay time.Duration, next func(room *Room)) {
	s.cancelTimer(room)
	token := s.timerSeq.Add(1)
	code := room.Code
	room.timerToken = token
	room.timer = time.AfterFunc(delay, func() {
		s.fire(code, token, next)
	})
}

func (s *Server) cancelTimer(room *Room) {
	if room.timer != nil {
		room.timer.Stop()
		room.timer = nil
	}
	room.timerToken = 0
}

func (s *Server) fire(code string, token uint64, next func(room *Room)) {
	ran := s.store.WithRoom(code, func(room *Room) {
		if room.timerToken != token {
			log.Debug().Str("room", code).Uint64("token", token).Msg("stale timer ignored")
			return
		}
		room.timer = nil
		room.timerToken = 0
		next(room)
	})
	if !ran {
		log.Debug().Str("room", code).Msg("timer fired for deleted room")
	}
}
