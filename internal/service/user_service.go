package service

import (
	"context"
	"fmt"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"
)

type UserRepo interface {
	Create(ctx context.Context, name string, imagePath *string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
}

// AvatarStore persists a decoded avatar and returns its stored path.
type AvatarStore interface {
	SaveAvatar(owner string, b64 string) (string, error)
}

type UserService struct {
	repo    UserRepo
	avatars AvatarStore
}

func NewUserService(repo UserRepo, avatars AvatarStore) *UserService {
	return &UserService{repo: repo, avatars: avatars}
}

// Register creates a user with a decoded base64 avatar. Name uniqueness is
// enforced by the store (domain.ErrUserNameTaken).
func (s *UserService) Register(ctx context.Context, name, imageB64 string) (*domain.User, error) {
	path, err := s.avatars.SaveAvatar(name, imageB64)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, name, &path)
	if err != nil {
		return nil, fmt.Errorf("userRepo.Create: %w", err)
	}
	return user, nil
}

// CheckUser resolves a display name to the stored user.
func (s *UserService) CheckUser(ctx context.Context, name string) (*domain.User, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}
