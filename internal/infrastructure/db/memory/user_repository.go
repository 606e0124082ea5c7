// Package memory provides store adapters backed by process memory. They are
// the development/test implementation of the persistence ports; data does not
// survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/userhub/identity-api/internal/core/domain"
)

// UserRepository keeps accounts in a map guarded by one RWMutex. Uniqueness
// checks and writes happen under the same write lock, which is what makes
// Create and UpdateByID atomic with respect to concurrent registrations.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	if u.UpdatedAt != nil {
		at := *u.UpdatedAt
		clone.UpdatedAt = &at
	}
	return &clone
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context, skip, limit int64) ([]*domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := int64(len(ids))
	if skip < 0 {
		skip = 0
	}
	if skip >= total {
		return []*domain.User{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}

	page := make([]*domain.User, 0, end-skip)
	for _, id := range ids[skip:end] {
		page = append(page, cloneUser(r.users[id]))
	}
	return page, total, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailExists
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameExists
		}
	}

	r.nextID++
	clone := cloneUser(user)
	clone.ID = r.nextID
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *UserRepository) UpdateByID(_ context.Context, id int64, update domain.UserUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	for otherID, other := range r.users {
		if otherID == id {
			continue
		}
		if update.Email != nil && other.Email == *update.Email {
			return nil, domain.ErrEmailExists
		}
		if update.Username != nil && other.Username == *update.Username {
			return nil, domain.ErrUsernameExists
		}
	}

	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	now := time.Now().UTC()
	u.UpdatedAt = &now

	return cloneUser(u), nil
}

func (r *UserRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) Stats(_ context.Context) (*domain.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.UserStats{}
	for _, u := range r.users {
		stats.TotalUsers++
		if u.Role == domain.RoleAdmin {
			stats.AdminUsers++
		} else {
			stats.RegularUsers++
		}
	}
	return stats, nil
}
