package ws

import "github.com/HovhannisyanAlbert/chatServer/internal/service"

// Inbound event tags. An empty tag is treated as post_message, the implicit
// default for plain chat clients.
const (
	TypeFetchMessages = "fetch_messages"
	TypePostMessage   = "post_message"

	// outbound
	TypeChatMessage = "chat.message"
)

// GroupKey derives the broadcast group for a room name.
func GroupKey(roomName string) string {
	return "room:" + roomName
}

type InboundEvent struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	RoomID   int64  `json:"room_id"`
	RoomName string `json:"room_name"`
	Message  string `json:"message"`
}

// ChatMessageEvent is the delta broadcast: one new message, decorated.
type ChatMessageEvent struct {
	Type      string  `json:"type"`
	ID        int64   `json:"id"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	UserName  string  `json:"user_name"`
	UserImage *string `json:"user_image"`
}

// HistoryResponse answers an explicit sync request.
type HistoryResponse struct {
	Messages []service.HistoryItem `json:"messages"`
}

type ErrorEvent struct {
	Error string `json:"error"`
}
