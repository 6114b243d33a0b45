package loader

import (
	"context"
	"errors"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// ErrUserNotFound mirrors the Postgres repository's lookup failure so callers
// treat both sources the same.
var ErrUserNotFound = errors.New("user not found")

// UserStore serves accounts loaded from the users CSV through
// repository.UserRepository.
type UserStore struct {
	byName map[string]domain.User
}

func NewUserStore(users []domain.User) *UserStore {
	byName := make(map[string]domain.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &UserStore{byName: byName}
}

// OpenUsers loads the users CSV into a UserStore.
func OpenUsers(path string) (*UserStore, error) {
	users, err := LoadUsers(path)
	if err != nil {
		return nil, err
	}
	return NewUserStore(users), nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
