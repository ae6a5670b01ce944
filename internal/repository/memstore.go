package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/user-directory/internal/model"
)

// MemStore is an in-memory UserStore. It backs the dev/test environments
// and the test suites, and enforces the same uniqueness invariants as the
// MySQL schema so conflict behavior is identical.
type MemStore struct {
	mu     sync.Mutex
	nextID uint64
	users  []model.User // insertion order
}

func NewMemStore() *MemStore { return &MemStore{nextID: 1} }

var _ UserStore = (*MemStore)(nil)

func (s *MemStore) find(match func(model.User) bool) (int, bool) {
	for i, u := range s.users {
		if match(u) {
			return i, true
		}
	}
	return 0, false
}

func (s *MemStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.find(func(u model.User) bool { return u.ID == id }); ok {
		return s.users[i], nil
	}
	return model.User{}, ErrNotFound
}

func (s *MemStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.find(func(u model.User) bool { return u.Username == username }); ok {
		return s.users[i], nil
	}
	return model.User{}, ErrNotFound
}

func (s *MemStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.find(func(u model.User) bool { return u.Email == email }); ok {
		return s.users[i], nil
	}
	return model.User{}, ErrNotFound
}

func (s *MemStore) List(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemStore) Create(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(u.Username, u.Email, 0); err != nil {
		return model.User{}, err
	}
	now := time.Now().UTC()
	u.ID = s.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.nextID++
	s.users = append(s.users, u)
	return u, nil
}

func (s *MemStore) Update(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(func(e model.User) bool { return e.ID == u.ID })
	if !ok {
		return model.User{}, ErrNotFound
	}
	if err := s.checkUnique(u.Username, u.Email, u.ID); err != nil {
		return model.User{}, err
	}
	u.CreatedAt = s.users[i].CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[i] = u
	return u, nil
}

func (s *MemStore) Delete(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(func(u model.User) bool { return u.ID == id })
	if !ok {
		return ErrNotFound
	}
	s.users = append(s.users[:i], s.users[i+1:]...)
	return nil
}

// checkUnique mirrors the unique indexes: no other record (id != self) may
// share the username or email.
func (s *MemStore) checkUnique(username, email string, self uint64) error {
	for _, u := range s.users {
		if u.ID == self {
			continue
		}
		if u.Username == username {
			return ErrUsernameExists
		}
		if u.Email == email {
			return ErrEmailExists
		}
	}
	return nil
}
