package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

func TestStandingsRoundTrip(t *testing.T) {
	raw, err := EncodeStandings([]Standing{
		{PlayerID: "a", Name: "Ada", Score: 0.5},
		{PlayerID: "b", Name: "Ben", Score: -10, Eliminated: true},
	})
	require.NoError(t, err)

	standings, err := Match{Standings: raw}.DecodeStandings()
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "Ada", standings[0].Name)
	assert.True(t, standings[1].Eliminated)
}

func TestEncodeStandingsNil(t *testing.T) {
	raw, err := EncodeStandings(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestUniqueViolationDetection(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

func TestNilConnection(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, SaveMatch(ctx, nil, &Match{}))
	_, err := RecentMatches(ctx, nil, 5)
	assert.Error(t, err)
	assert.Error(t, Migrate(nil))
}

func TestOpenWithoutURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Open()
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("skipping test; postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	conn, err := OpenDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, Configure(conn, Pool{MaxOpenConns: 2, MaxIdleConns: 2}))
	require.NoError(t, Migrate(conn))
	return conn
}

func TestMatchArchive(t *testing.T) {
	conn := startPostgres(t)
	ctx := context.Background()

	standings, err := EncodeStandings([]Standing{{PlayerID: "a", Name: "Ada", Score: -3}})
	require.NoError(t, err)
	first := &Match{
		MatchID:    uuid.NewString(),
		RoomCode:   "ROOM1",
		Rounds:     7,
		WinnerName: "Ada",
		Standings:  standings,
		FinishedAt: time.Now().UTC().Add(-time.Minute),
	}
	second := &Match{
		MatchID:    uuid.NewString(),
		RoomCode:   "ROOM2",
		Rounds:     3,
		WinnerName: "none",
		Standings:  standings,
		FinishedAt: time.Now().UTC(),
	}

	t.Run("SaveMatch", func(t *testing.T) {
		require.NoError(t, SaveMatch(ctx, conn, first))
		require.NoError(t, SaveMatch(ctx, conn, second))
		assert.NotZero(t, first.ID)
	})

	t.Run("SaveMatch_Duplicate", func(t *testing.T) {
		dup := *first
		dup.ID = 0
		assert.ErrorIs(t, SaveMatch(ctx, conn, &dup), ErrDuplicateMatch)
	})

	t.Run("RecentMatches", func(t *testing.T) {
		matches, err := RecentMatches(ctx, conn, 10)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "ROOM2", matches[0].RoomCode)
		got, err := matches[1].DecodeStandings()
		require.NoError(t, err)
		assert.Equal(t, "Ada", got[0].Name)
	})
}
