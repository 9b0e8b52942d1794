package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"
	"github.com/HovhannisyanAlbert/chatServer/internal/service"
	"github.com/HovhannisyanAlbert/chatServer/pkg/metrics"
)

type RoomSvc interface {
	GetRoom(ctx context.Context, id int64) (*domain.Room, error)
	GetRoomByName(ctx context.Context, name string) (*domain.Room, error)
}

type UserSvc interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type ChatSvc interface {
	Create(ctx context.Context, roomID, userID int64, text string) (*domain.ChatMessage, error)
}

type HistorySvc interface {
	RoomHistory(ctx context.Context, roomID int64) ([]service.HistoryItem, error)
	Decorate(m domain.ChatMessage, author *domain.User) service.HistoryItem
}

// session states; transitions are Connecting -> Active -> Closed, Closed is
// terminal.
const (
	stateConnecting int32 = iota
	stateActive
	stateClosed
)

// Session is the per-connection state machine. One session owns one
// connection, subscribes it to its room group, and dispatches inbound events
// one at a time in arrival order.
type Session struct {
	conn     Conn
	hub      *Hub
	relay    *Bus // optional cross-instance relay, may be nil
	roomName string
	group    string

	rooms   RoomSvc
	users   UserSvc
	chat    ChatSvc
	history HistorySvc

	state atomic.Int32
}

func NewSession(conn Conn, hub *Hub, relay *Bus, roomName string, rooms RoomSvc, users UserSvc, chat ChatSvc, history HistorySvc) *Session {
	return &Session{
		conn:     conn,
		hub:      hub,
		relay:    relay,
		roomName: roomName,
		group:    GroupKey(roomName),
		rooms:    rooms,
		users:    users,
		chat:     chat,
		history:  history,
	}
}

// Open moves the session from Connecting to Active and registers the
// connection with the hub.
func (s *Session) Open() bool {
	if !s.state.CompareAndSwap(stateConnecting, stateActive) {
		return false
	}
	s.hub.Join(s.group, s.conn)
	metrics.ActiveConnections.Inc()
	return true
}

// Close moves the session to Closed, unsubscribes and releases the
// connection. Safe to call more than once and from any state.
func (s *Session) Close() {
	prev := s.state.Swap(stateClosed)
	if prev == stateClosed {
		return
	}
	if prev == stateActive {
		metrics.ActiveConnections.Dec()
	}
	s.hub.Leave(s.group, s.conn)
	_ = s.conn.Close()
}

// HandleEvent processes one inbound frame. Events arriving outside the
// Active state are dropped.
func (s *Session) HandleEvent(ctx context.Context, data []byte) {
	if s.state.Load() != stateActive {
		return
	}

	var ev InboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		s.reject("invalid json")
		return
	}

	switch ev.Type {
	case TypeFetchMessages:
		s.handleFetch(ctx, ev)
	case TypePostMessage, "":
		s.handlePost(ctx, ev)
	default:
		s.reject("unsupported event type: " + ev.Type)
	}
}

func (s *Session) handlePost(ctx context.Context, ev InboundEvent) {
	if ev.UserID <= 0 {
		s.reject("user_id is required")
		return
	}

	room, ok := s.resolveRoom(ctx, ev)
	if !ok {
		return
	}

	m, err := s.chat.Create(ctx, room.ID, ev.UserID, ev.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			s.reject("Room does not exist")
		case errors.Is(err, domain.ErrUserNotFound):
			s.reject("User not found")
		case errors.Is(err, domain.ErrEmptyMessage):
			s.reject("message is required")
		case errors.Is(err, domain.ErrMessageTooBig):
			s.reject("message too long")
		default:
			slog.Error("ws post: create message", "room", room.ID, "user", ev.UserID, "err", err)
			s.reject("internal error")
		}
		return
	}

	author, err := s.users.Get(ctx, ev.UserID)
	if err != nil {
		slog.Error("ws post: load author", "user", ev.UserID, "err", err)
		s.reject("internal error")
		return
	}

	item := s.history.Decorate(*m, author)
	payload, err := json.Marshal(ChatMessageEvent{
		Type:      TypeChatMessage,
		ID:        item.ID,
		Message:   item.Text,
		Timestamp: item.Timestamp,
		UserName:  item.UserName,
		UserImage: item.UserImage,
	})
	if err != nil {
		slog.Error("ws post: marshal broadcast", "err", err)
		return
	}

	s.broadcast(ctx, GroupKey(room.Name), payload)
}

// handleFetch answers a sync request with the full ordered room history,
// sent to the requesting connection only.
func (s *Session) handleFetch(ctx context.Context, ev InboundEvent) {
	room, ok := s.resolveRoom(ctx, ev)
	if !ok {
		return
	}

	items, err := s.history.RoomHistory(ctx, room.ID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.reject("Room does not exist")
			return
		}
		slog.Error("ws fetch: assemble history", "room", room.ID, "err", err)
		s.reject("internal error")
		return
	}
	if items == nil {
		items = []service.HistoryItem{}
	}

	payload, err := json.Marshal(HistoryResponse{Messages: items})
	if err != nil {
		slog.Error("ws fetch: marshal history", "err", err)
		return
	}
	s.conn.Send(payload)
}

// resolveRoom picks the target room from the event, falling back to the room
// this session is scoped to. A missing room is reported to the client.
func (s *Session) resolveRoom(ctx context.Context, ev InboundEvent) (*domain.Room, bool) {
	var (
		room *domain.Room
		err  error
	)
	switch {
	case ev.RoomID > 0:
		room, err = s.rooms.GetRoom(ctx, ev.RoomID)
	case ev.RoomName != "":
		room, err = s.rooms.GetRoomByName(ctx, ev.RoomName)
	default:
		room, err = s.rooms.GetRoomByName(ctx, s.roomName)
	}
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.reject("Room does not exist")
		} else {
			slog.Error("ws: resolve room", "err", err)
			s.reject("internal error")
		}
		return nil, false
	}
	return room, true
}

func (s *Session) broadcast(ctx context.Context, group string, payload []byte) {
	s.hub.Send(group, payload)
	if s.relay != nil {
		if err := s.relay.Publish(ctx, group, payload); err != nil {
			slog.Warn("ws: relay publish", "group", group, "err", err)
		}
	}
}

func (s *Session) reject(msg string) {
	metrics.EventsRejected.Inc()
	payload, err := json.Marshal(ErrorEvent{Error: msg})
	if err != nil {
		return
	}
	s.conn.Send(payload)
}
