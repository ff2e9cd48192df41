package server

import (
	"math"
	"testing"
	"time"

	"balance-scale/internal/game"
	"balance-scale/internal/protocol"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choicesOf(srv *Server, code string) map[string]float64 {
	out := map[string]float64{}
	srv.store.WithRoom(code, func(room *Room) {
		for id, value := range room.CurrentChoices {
			out[id] = value
		}
	})
	return out
}

func TestSubmitIgnoredOutsidePlaying(t *testing.T) {
	srv, rec := newRecordedServer(t, fastConfig())
	srv.Join("R", "a", "")
	srv.Join("R", "b", "")

	srv.Submit("R", "a", 10)
	srv.Submit("NOPE", "a", 10)

	assert.Empty(t, choicesOf(srv, "R"))
	assert.Zero(t, rec.count(protocol.MsgPlayerVoted))
}

func TestSubmitPreconditions(t *testing.T) {
	srv, rec := newRecordedServer(t, fastConfig())
	startedRoom(t, srv, "R", "a", "b", "c")
	srv.store.WithRoom("R", func(room *Room) {
		player, _ := room.FindPlayer("c")
		player.IsEliminated = true
	})

	srv.Submit("R", "stranger", 10)
	srv.Submit("R", "c", 10)
	srv.Submit("R", "a", -1)
	srv.Submit("R", "a", 100.5)
	srv.Submit("R", "a", math.NaN())
	srv.Submit("R", "a", math.Inf(1))

	assert.Empty(t, choicesOf(srv, "R"))
	assert.Zero(t, rec.count(protocol.MsgPlayerVoted))
	assert.Equal(t, StatusPlaying, roomState(t, srv, "R").Status)
}

func TestSubmitLastWriteWins(t *testing.T) {
	srv, rec := newRecordedServer(t, fastConfig())
	startedRoom(t, srv, "R", "a", "b", "c")

	srv.Submit("R", "a", 10)
	srv.Submit("R", "a", 42)

	assert.Equal(t, map[string]float64{"a": 42}, choicesOf(srv, "R"))
	assert.Equal(t, 2, rec.count(protocol.MsgPlayerVoted))
	msg, ok := rec.last(protocol.MsgPlayerVoted)
	require.True(t, ok)
	assert.Equal(t, protocol.PlayerVoted{PlayerID: "a"}, msg.Payload)
}

func TestAllVotesInResolvesRound(t *testing.T) {
	cfg := fastConfig()
	cfg.ResultsDelay = 200 * time.Millisecond
	srv, rec := newRecordedServer(t, cfg)
	startedRoom(t, srv, "R", "a", "b")

	srv.Submit("R", "a", 0)
	srv.Submit("R", "b", 100)

	assert.Equal(t, 1, rec.count(protocol.MsgVotesClosed))
	view := roomState(t, srv, "R")
	assert.Equal(t, StatusPlaying, view.Status, "status flips after the results delay")
	require.NotNil(t, view.LastRoundResult)
	assert.Equal(t, "P2", view.LastRoundResult.WinnerName)
	assert.Empty(t, view.LastRoundResult.Target)

	view = waitForStatus(t, srv, "R", StatusResults)
	assert.Equal(t, -1.0, view.Players[0].Score)
	assert.Equal(t, 0.0, view.Players[1].Score)

	srv.Submit("R", "a", 50)
	assert.Equal(t, 1, rec.count(protocol.MsgVotesClosed), "late submissions are ignored")
}

func TestDisconnectCompletesRound(t *testing.T) {
	srv, rec := newRecordedServer(t, fastConfig())
	startedRoom(t, srv, "R", "a", "b", "c")

	srv.Submit("R", "a", 20)
	srv.Submit("R", "b", 30)
	srv.Disconnect("R", "c")

	assert.Equal(t, 1, rec.count(protocol.MsgVotesClosed))
	msg, ok := rec.last(protocol.MsgSystem)
	require.True(t, ok)
	assert.Equal(t, protocol.SystemNotice{Text: "P3 has left the game."}, msg.Payload)
	view := waitForStatus(t, srv, "R", StatusResults)
	require.Len(t, view.LastRoundResult.Choices, 2)
}

func TestTimeoutAndAllVotesAgree(t *testing.T) {
	srv, _ := newRecordedServer(t, fastConfig())
	startedRoom(t, srv, "VOTES", "a", "b", "c", "d")
	startedRoom(t, srv, "TIMEOUT", "a", "b", "c", "d")

	values := map[string]float64{"a": 50, "b": 50, "c": 10, "d": 90}
	for _, id := range []string{"a", "b", "c", "d"} {
		srv.Submit("VOTES", id, values[id])
	}
	srv.store.WithRoom("TIMEOUT", func(room *Room) {
		for id, value := range values {
			room.CurrentChoices[id] = value
		}
		srv.cancelTimer(room)
		srv.roundTimeout(room)
	})

	byVotes := roomState(t, srv, "VOTES").LastRoundResult
	byTimeout := roomState(t, srv, "TIMEOUT").LastRoundResult
	require.NotNil(t, byVotes)
	require.NotNil(t, byTimeout)
	if diff := cmp.Diff(byVotes, byTimeout); diff != "" {
		t.Fatalf("records differ (-votes +timeout):\n%s", diff)
	}
	assert.Equal(t, "40.00", byVotes.Target)
	assert.Equal(t, "P3", byVotes.WinnerName)
}

func TestRoundTimeoutCountsAbstentions(t *testing.T) {
	cfg := fastConfig()
	cfg.RoundDuration = 200 * time.Millisecond
	srv, rec := newRecordedServer(t, cfg)
	startedRoom(t, srv, "R", "a", "b", "c")

	srv.Submit("R", "a", 40)

	view := waitForStatus(t, srv, "R", StatusResults)
	assert.Equal(t, 1, rec.count(protocol.MsgVotesClosed))
	result := view.LastRoundResult
	require.NotNil(t, result)
	assert.Equal(t, "P1", result.WinnerName)
	// (40 - 1 - 1) / 3 * 0.8
	assert.Equal(t, "10.13", result.Target)
	assert.Nil(t, result.Choices[1].Choice)
	assert.Equal(t, game.OutcomeAbstained, result.Choices[1].Outcome)
}
