package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"balance-scale/internal/protocol"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	maxCodeLength  = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	id      string
	code    string
	conn    *websocket.Conn
	limiter *rate.Limiter

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// enqueue queues a frame without blocking. It reports false when the client
// is closed or its outbox is full.
func (c *wsClient) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type wsHub struct {
	mu         sync.Mutex
	groups     map[string]map[*wsClient]struct{}
	outboxSize int
}

func newWSHub(outboxSize int) *wsHub {
	if outboxSize <= 0 {
		outboxSize = 32
	}
	return &wsHub{
		groups:     make(map[string]map[*wsClient]struct{}),
		outboxSize: outboxSize,
	}
}

func (h *wsHub) Add(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[client.code]
	if group == nil {
		group = make(map[*wsClient]struct{})
		h.groups[client.code] = group
	}
	group[client] = struct{}{}
}

func (h *wsHub) Remove(client *wsClient) {
	h.mu.Lock()
	group := h.groups[client.code]
	if group != nil {
		delete(group, client)
		if len(group) == 0 {
			delete(h.groups, client.code)
		}
	}
	h.mu.Unlock()
	client.close()
}

func (h *wsHub) Send(client *wsClient, msgType string, payload any) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("type", msgType).Msg("ws encode failed")
		return
	}
	if !client.enqueue(data) {
		h.Remove(client)
	}
}

// Broadcast queues the message for every client in the room. Clients whose
// outbox is full are dropped.
func (h *wsHub) Broadcast(code, msgType string, payload any) {
	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		log.Error().Err(err).Str("room", code).Str("type", msgType).Msg("ws encode failed")
		return
	}
	h.mu.Lock()
	group := h.groups[code]
	clients := make([]*wsClient, 0, len(group))
	for client := range group {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if !client.enqueue(data) {
			log.Warn().Str("room", code).Str("conn", client.id).Msg("ws client dropped, outbox full")
			h.Remove(client)
		}
	}
}

func (h *wsHub) CloseAll() {
	h.mu.Lock()
	clients := make([]*wsClient, 0)
	for _, group := range h.groups {
		for client := range group {
			clients = append(clients, client)
		}
	}
	h.groups = make(map[string]map[*wsClient]struct{})
	h.mu.Unlock()
	for _, client := range clients {
		client.close()
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.NotFound(w, r)
		return
	}
	if len(code) > maxCodeLength {
		writeError(w, http.StatusBadRequest, "room code too long")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("ws upgrade failed")
		return
	}
	client := &wsClient{
		id:      uuid.NewString(),
		code:    code,
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSecond), s.cfg.MessageBurst),
		send:    make(chan []byte, s.hub.outboxSize),
	}
	log.Info().Str("room", code).Str("conn", client.id).Str("remote", r.RemoteAddr).Msg("ws connected")
	s.hub.Add(client)
	go client.writePump()
	s.hub.Send(client, protocol.MsgWelcome, protocol.Welcome{ConnectionID: client.id})
	if view, ok := s.RoomView(code); ok {
		s.hub.Send(client, protocol.MsgState, view)
	}
	go s.readPump(client)
}

func (s *Server) readPump(client *wsClient) {
	defer func() {
		s.hub.Remove(client)
		s.Disconnect(client.code, client.id)
	}()
	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			log.Info().Str("room", client.code).Str("conn", client.id).Err(err).Msg("ws disconnected")
			return
		}
		if !client.limiter.Allow() {
			log.Debug().Str("room", client.code).Str("conn", client.id).Msg("ws message rate limited")
			continue
		}
		env, err := protocol.DecodeEnvelope(data)
		if err != nil {
			log.Debug().Str("room", client.code).Str("conn", client.id).Err(err).Msg("ws message malformed")
			continue
		}
		s.dispatch(client.code, client.id, env)
	}
}

// dispatch maps one inbound message to a room event. Unknown or malformed
// messages are ignored.
func (s *Server) dispatch(code, connID string, env protocol.Envelope) {
	switch env.Type {
	case protocol.MsgJoin:
		var req protocol.JoinRequest
		if len(env.Payload) > 0 {
			decoded, err := protocol.DecodePayload[protocol.JoinRequest](env)
			if err != nil {
				return
			}
			req = decoded
		}
		s.Join(code, connID, strings.TrimSpace(req.Name))
	case protocol.MsgStart:
		s.Start(code, connID)
	case protocol.MsgSubmit:
		req, err := protocol.DecodePayload[protocol.SubmitRequest](env)
		if err != nil || req.Value == nil {
			return
		}
		s.Submit(code, connID, *req.Value)
	case protocol.MsgAdvance:
		s.Advance(code, connID)
	default:
		log.Debug().Str("room", code).Str("conn", connID).Str("type", env.Type).Msg("ws message type unknown")
	}
}
