package memory

import (
	"context"
	"fmt"
	"sync"

	"smartfix/apperrors"
	userRepo "smartfix/database/repository/user"
	"smartfix/models"
)

// UserStore implements userRepo.UserRepository.
type UserStore struct {
	mu   sync.Mutex
	data map[string]models.User
}

var _ userRepo.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{data: map[string]models.User{}}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, apperrors.ErrAlreadyExists)
	}
	s.data[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &u, nil
}

func (s *UserStore) SetFCMToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data[id]
	if !ok {
		return apperrors.NotFound("user", id)
	}
	u.FCMToken = token
	s.data[id] = u
	return nil
}
