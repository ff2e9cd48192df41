package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"balance-scale/internal/config"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

// fastConfig keeps the round open until the test closes it and shortens the
// other delays.
func fastConfig() config.Config {
	cfg := config.Default()
	cfg.RoundDuration = time.Hour
	cfg.AnnounceDelay = 10 * time.Millisecond
	cfg.ResultsDelay = 10 * time.Millisecond
	cfg.ScoreboardDelay = 10 * time.Millisecond
	return cfg
}

type sent struct {
	Code    string
	Type    string
	Payload any
}

type recorder struct {
	mu   sync.Mutex
	msgs []sent
}

func (r *recorder) Broadcast(code, msgType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, sent{Code: code, Type: msgType, Payload: payload})
}

func (r *recorder) count(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, msg := range r.msgs {
		if msg.Type == msgType {
			n++
		}
	}
	return n
}

func (r *recorder) last(msgType string) (sent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if r.msgs[i].Type == msgType {
			return r.msgs[i], true
		}
	}
	return sent{}, false
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.msgs))
	for _, msg := range r.msgs {
		out = append(out, msg.Type)
	}
	return out
}

func newRecordedServer(t *testing.T, cfg config.Config) (*Server, *recorder) {
	t.Helper()
	srv := New(nil, cfg)
	rec := &recorder{}
	srv.out = rec
	t.Cleanup(func() {
		for _, code := range srv.store.Codes() {
			srv.store.WithRoom(code, srv.cancelTimer)
		}
	})
	return srv, rec
}

func roomState(t *testing.T, srv *Server, code string) RoomView {
	t.Helper()
	view, ok := srv.RoomView(code)
	require.True(t, ok, "room %s should exist", code)
	return view
}

func waitForStatus(t *testing.T, srv *Server, code string, status Status) RoomView {
	t.Helper()
	var view RoomView
	require.Eventually(t, func() bool {
		current, ok := srv.RoomView(code)
		view = current
		return ok && current.Status == status
	}, 2*time.Second, 5*time.Millisecond, "room %s never reached %s", code, status)
	return view
}

// startedRoom joins the given players into a fresh room and waits for the
// first round to open. The first id is the host.
func startedRoom(t *testing.T, srv *Server, code string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		srv.Join(code, id, "")
	}
	srv.Start(code, ids[0])
	waitForStatus(t, srv, code, StatusPlaying)
}

func setScore(srv *Server, code, id string, score float64) {
	srv.store.WithRoom(code, func(room *Room) {
		if player, ok := room.FindPlayer(id); ok {
			player.Score = score
		}
	})
}
