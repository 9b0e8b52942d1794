package service

import (
	"context"
	"strings"
	"testing"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	created []string
	err     error
}

func (r *recordingRepo) Create(_ context.Context, _, _ int64, text string) (*domain.ChatMessage, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = append(r.created, text)
	return &domain.ChatMessage{ID: int64(len(r.created)), Text: text}, nil
}

func (r *recordingRepo) ListByRoomAndUser(_ context.Context, _, _ int64) ([]domain.ChatMessage, error) {
	return nil, nil
}

func TestMessageCreateTrimsText(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewMessageService(repo)

	m, err := svc.Create(context.Background(), 1, 1, "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", m.Text)
	assert.Equal(t, []string{"hello"}, repo.created)
}

func TestMessageCreateRejectsBlank(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewMessageService(repo)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Create(context.Background(), 1, 1, text)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	}
	assert.Empty(t, repo.created, "nothing may reach the store")
}

func TestMessageCreateRejectsOversized(t *testing.T) {
	repo := &recordingRepo{}
	svc := NewMessageService(repo)

	_, err := svc.Create(context.Background(), 1, 1, strings.Repeat("a", domain.MaxMessageLen+1))
	assert.ErrorIs(t, err, domain.ErrMessageTooBig)

	m, err := svc.Create(context.Background(), 1, 1, strings.Repeat("a", domain.MaxMessageLen))
	require.NoError(t, err)
	assert.Len(t, m.Text, domain.MaxMessageLen)
}

func TestMessageCreatePropagatesSentinels(t *testing.T) {
	for _, sentinel := range []error{domain.ErrRoomNotFound, domain.ErrUserNotFound} {
		svc := NewMessageService(&recordingRepo{err: sentinel})
		_, err := svc.Create(context.Background(), 1, 1, "hi")
		assert.ErrorIs(t, err, sentinel)
	}
}
