package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"balance-scale/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Broadcaster delivers a typed message to every connection subscribed to a
// room. Implementations must not block.
type Broadcaster interface {
	Broadcast(code, msgType string, payload any)
}

type Server struct {
	store    *Store
	db       *gorm.DB
	hub      *wsHub
	out      Broadcaster
	cfg      config.Config
	timerSeq atomic.Uint64
	archives sync.WaitGroup
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	hub := newWSHub(cfg.OutboxSize)
	return &Server{
		store: NewStore(),
		db:    conn,
		hub:   hub,
		out:   hub,
		cfg:   cfg,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Get("/rooms", s.handleRoomsPage)
	r.Route("/api", func(r chi.Router) {
		r.Get("/rooms", s.handleRooms)
		r.Get("/matches", s.handleMatches)
	})
	r.Get("/ws/rooms/{code}", s.handleWebsocket)
	return r
}

// Shutdown waits for pending archive writes to finish or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.archives.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.hub.CloseAll()
		return nil
	case <-ctx.Done():
		s.hub.CloseAll()
		return ctx.Err()
	}
}
