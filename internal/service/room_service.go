package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"
)

type RoomRepo interface {
	Create(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, id int64) (*domain.Room, error)
	GetByName(ctx context.Context, name string) (*domain.Room, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error)
	Delete(ctx context.Context, id int64) error
	AddMembers(ctx context.Context, roomID int64, userIDs []int64) error
}

type RoomService struct {
	repo RoomRepo
}

func NewRoomService(repo RoomRepo) *RoomService {
	return &RoomService{repo: repo}
}

var ErrEmptyRoomName = errors.New("room name is required")

// CreateRoom creates a room with a unique name.
func (s *RoomService) CreateRoom(ctx context.Context, name string) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyRoomName
	}

	room := &domain.Room{Name: name}
	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, domain.ErrRoomNameTaken) {
			return nil, domain.ErrRoomNameTaken
		}
		return nil, fmt.Errorf("roomRepo.Create: %w", err)
	}
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*domain.Room, error) {
	return s.repo.Get(ctx, id)
}

func (s *RoomService) GetRoomByName(ctx context.Context, name string) (*domain.Room, error) {
	return s.repo.GetByName(ctx, name)
}

// ListRooms returns rooms with cursor pagination.
func (s *RoomService) ListRooms(ctx context.Context, limit int, cursor string) ([]domain.Room, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return s.repo.List(ctx, limit, cursor)
}

// DeleteRoom removes the room together with its messages and memberships.
func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// AddMembers adds users to the room's member set; already-present members are
// left untouched.
func (s *RoomService) AddMembers(ctx context.Context, roomID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	return s.repo.AddMembers(ctx, roomID, userIDs)
}
