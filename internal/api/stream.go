package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tycoon/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type streamMessage struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Data   any    `json:"data,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// stream fans engine emissions out to every websocket subscribed to one game.
type stream struct {
	gameID string
	log    *slog.Logger

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
}

func newStream(gameID string, logger *slog.Logger) *stream {
	return &stream{
		gameID:  gameID,
		log:     logger.With("game_id", gameID),
		clients: make(map[*subscriber]struct{}),
	}
}

func (s *stream) Notification(n game.Notification) { s.broadcast("notification", n) }
func (s *stream) EventModal(ev game.Event)         { s.broadcast("event", ev) }
func (s *stream) TurnSummary(ts game.TurnSummary)  { s.broadcast("turn_summary", ts) }

func (s *stream) GameOver(reason string, data map[string]any) {
	s.broadcast("game_over", game.GameOverEmission{Reason: reason, Data: data})
}

func (s *stream) encode(typ string, data any) []byte {
	raw, err := json.Marshal(streamMessage{Type: typ, GameID: s.gameID, Data: data})
	if err != nil {
		s.log.Error("encode stream message", "type", typ, "err", err)
		return nil
	}
	return raw
}

func (s *stream) broadcast(typ string, data any) {
	raw := s.encode(typ, data)
	if raw == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- raw:
		default:
			// slow reader
			delete(s.clients, c)
			close(c.send)
			s.log.Warn("dropped slow stream subscriber")
		}
	}
}

func (s *stream) add(c *subscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

func (s *stream) remove(c *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	g, err := s.lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "game_id", g.id, "err", err)
		return
	}

	c := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	c.send <- g.stream.encode("subscribed", nil)
	if !g.stream.add(c) {
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump(g.stream)
}

// readPump only exists to notice the peer going away and to answer pongs.
func (c *subscriber) readPump(s *stream) {
	defer func() {
		s.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Debug("stream read closed", "err", err)
			}
			return
		}
	}
}

func (c *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
