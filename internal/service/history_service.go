package service

import (
	"context"
	"sort"
	"time"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"

	"github.com/samber/lo"
)

// TimestampLayout is the wire format for message timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

type HistoryRoomRepo interface {
	Get(ctx context.Context, id int64) (*domain.Room, error)
	ListMembers(ctx context.Context, roomID int64) ([]domain.User, error)
}

type HistoryMessageRepo interface {
	ListByRoomAndUser(ctx context.Context, roomID, userID int64) ([]domain.ChatMessage, error)
}

// AvatarResolver maps a stored avatar path to its public URL.
type AvatarResolver interface {
	URL(rel *string) *string
}

// HistoryItem is one message decorated with its author's display data.
type HistoryItem struct {
	ID        int64     `json:"id"`
	Text      string    `json:"message"`
	Timestamp string    `json:"timestamp"`
	UserName  string    `json:"user_name"`
	UserImage *string   `json:"user_image"`
	CreatedAt time.Time `json:"-"`
}

// HistoryService assembles the full ordered history of a room: every member's
// messages, decorated, merged into the single (timestamp, id) total order.
type HistoryService struct {
	rooms    HistoryRoomRepo
	messages HistoryMessageRepo
	avatars  AvatarResolver
}

func NewHistoryService(rooms HistoryRoomRepo, messages HistoryMessageRepo, avatars AvatarResolver) *HistoryService {
	return &HistoryService{rooms: rooms, messages: messages, avatars: avatars}
}

// RoomHistory returns the room's messages oldest-first. The output does not
// depend on member iteration order: members are walked in ascending id order
// and the final sort is stable on (created_at, id), so two assemblies over
// the same data are identical.
func (s *HistoryService) RoomHistory(ctx context.Context, roomID int64) ([]HistoryItem, error) {
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return nil, err
	}

	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	items := make([]HistoryItem, 0, 64)
	for _, member := range members {
		msgs, err := s.messages.ListByRoomAndUser(ctx, roomID, member.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, lo.Map(msgs, func(m domain.ChatMessage, _ int) HistoryItem {
			return s.Decorate(m, &member)
		})...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	return items, nil
}

// Decorate attaches the author's display name and avatar URL to one message.
func (s *HistoryService) Decorate(m domain.ChatMessage, author *domain.User) HistoryItem {
	return HistoryItem{
		ID:        m.ID,
		Text:      m.Text,
		Timestamp: m.CreatedAt.UTC().Format(TimestampLayout),
		UserName:  author.Name,
		UserImage: s.avatars.URL(author.ImagePath),
		CreatedAt: m.CreatedAt,
	}
}
