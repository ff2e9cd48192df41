package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrDuplicateMatch = errors.New("match already recorded")

// Match is the archived summary of a finished game. Individual rounds are
// not stored.
type Match struct {
	ID         uint           `gorm:"primaryKey"`
	MatchID    string         `gorm:"size:36;uniqueIndex;not null"`
	RoomCode   string         `gorm:"size:64;index;not null"`
	Rounds     int            `gorm:"not null"`
	WinnerName string         `gorm:"size:64;not null"`
	Standings  datatypes.JSON `gorm:"type:jsonb;not null"`
	FinishedAt time.Time      `gorm:"index;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}

type Standing struct {
	PlayerID   string  `json:"playerId"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Eliminated bool    `json:"eliminated"`
}

func EncodeStandings(standings []Standing) (datatypes.JSON, error) {
	if standings == nil {
		standings = []Standing{}
	}
	raw, err := json.Marshal(standings)
	if err != nil {
		return nil, fmt.Errorf("encode standings: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func (m Match) DecodeStandings() ([]Standing, error) {
	var standings []Standing
	if len(m.Standings) == 0 {
		return standings, nil
	}
	if err := json.Unmarshal(m.Standings, &standings); err != nil {
		return nil, fmt.Errorf("decode standings: %w", err)
	}
	return standings, nil
}

func SaveMatch(ctx context.Context, conn *gorm.DB, match *Match) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.WithContext(ctx).Create(match).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMatch
		}
		return fmt.Errorf("save match %s: %w", match.MatchID, err)
	}
	return nil
}

func RecentMatches(ctx context.Context, conn *gorm.DB, limit int) ([]Match, error) {
	if conn == nil {
		return nil, errors.New("db connection is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	var matches []Match
	err := conn.WithContext(ctx).
		Order("finished_at desc").
		Limit(limit).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
