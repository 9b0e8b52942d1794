package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const maxRoomNameLen = 100

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	relay    *Bus

	rooms   RoomSvc
	users   UserSvc
	chat    ChatSvc
	history HistorySvc
}

func NewServer(hub *Hub, relay *Bus, rooms RoomSvc, users UserSvc, chat ChatSvc, history HistorySvc) *Server {
	return &Server{
		hub:     hub,
		relay:   relay,
		rooms:   rooms,
		users:   users,
		chat:    chat,
		history: history,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WS endpoint: GET /ws/messages/{room_name}/
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomName := strings.TrimSpace(chi.URLParam(r, "room_name"))
	if roomName == "" || len(roomName) > maxRoomNameLen {
		http.Error(w, "missing or malformed room name", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "room", roomName, "err", err)
		return
	}

	c := newWSConn(conn)
	sess := NewSession(c, s.hub, s.relay, roomName, s.rooms, s.users, s.chat, s.history)
	if !sess.Open() {
		_ = c.Close()
		return
	}
	slog.Debug("ws session open", "room", roomName, "conn", c.ID())

	go c.writeLoop()
	s.readLoop(r, c, sess)

	sess.Close()
	slog.Debug("ws session closed", "room", roomName, "conn", c.ID())
}

// readLoop pulls frames off the socket and feeds them to the session one at
// a time, which keeps events on one connection strictly ordered.
func (s *Server) readLoop(r *http.Request, c *wsConn, sess *Session) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * pingEvery))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * pingEvery))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		sess.HandleEvent(r.Context(), data)
	}
}
