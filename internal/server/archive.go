package server

import (
	"context"
	"errors"
	"time"

	"balance-scale/internal/db"
	"balance-scale/internal/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const archiveTimeout = 5 * time.Second

// archiveMatch stores the final standings of a finished game. It is a no-op
// without a database. The write runs off the room lock.
func (s *Server) archiveMatch(room *Room) {
	if s.db == nil {
		return
	}
	match, err := matchRecord(room, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Str("room", room.Code).Msg("archive encode failed")
		return
	}
	s.archives.Add(1)
	go func() {
		defer s.archives.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := db.SaveMatch(ctx, s.db, match); err != nil {
			if errors.Is(err, db.ErrDuplicateMatch) {
				log.Warn().Str("room", match.RoomCode).Str("match", match.MatchID).Msg("match already archived")
				return
			}
			log.Error().Err(err).Str("room", match.RoomCode).Str("match", match.MatchID).Msg("archive save failed")
			return
		}
		log.Info().Str("room", match.RoomCode).Str("match", match.MatchID).Str("winner", match.WinnerName).Msg("match archived")
	}()
}

func matchRecord(room *Room, finishedAt time.Time) (*db.Match, error) {
	standings := make([]db.Standing, 0, len(room.Players))
	for _, player := range room.Players {
		standings = append(standings, db.Standing{
			PlayerID:   player.ID,
			Name:       player.Name,
			Score:      player.Score,
			Eliminated: player.IsEliminated,
		})
	}
	raw, err := db.EncodeStandings(standings)
	if err != nil {
		return nil, err
	}
	return &db.Match{
		MatchID:    uuid.NewString(),
		RoomCode:   room.Code,
		Rounds:     room.Round,
		WinnerName: matchWinner(room),
		Standings:  raw,
		FinishedAt: finishedAt,
	}, nil
}

// matchWinner is the last player standing, or NoWinner when everyone was
// eliminated.
func matchWinner(room *Room) string {
	active := room.ActivePlayers()
	if len(active) == 1 {
		return active[0].Name
	}
	return game.NoWinner
}
