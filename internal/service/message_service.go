package service

import (
	"context"
	"strings"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"
	"github.com/HovhannisyanAlbert/chatServer/pkg/metrics"
)

type MessageRepo interface {
	Create(ctx context.Context, roomID, userID int64, text string) (*domain.ChatMessage, error)
	ListByRoomAndUser(ctx context.Context, roomID, userID int64) ([]domain.ChatMessage, error)
}

// MessageService is the write side of the message store: validation plus the
// atomic persist. Room/user existence failures surface as domain sentinels so
// every entry point classifies them the same way.
type MessageService struct {
	repo MessageRepo
}

func NewMessageService(repo MessageRepo) *MessageService {
	return &MessageService{repo: repo}
}

func (s *MessageService) Create(ctx context.Context, roomID, userID int64, text string) (*domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(text) > domain.MaxMessageLen {
		return nil, domain.ErrMessageTooBig
	}

	m, err := s.repo.Create(ctx, roomID, userID, text)
	if err != nil {
		return nil, err
	}
	metrics.MessagesPersisted.Inc()
	return m, nil
}
