package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
//
// Create and UpdateByID own the uniqueness invariant: they must perform the
// check-and-write atomically (unique index, single lock) and report
// violations as domain.ErrEmailExists / domain.ErrUsernameExists. Callers may
// pre-check for friendlier errors but must not rely on it.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns the page [skip, skip+limit) ordered by id, plus the total
	// number of accounts. A page past the end yields an empty slice.
	List(ctx context.Context, skip, limit int64) ([]*domain.User, int64, error)

	// Create assigns the next id and inserts the record.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateByID(ctx context.Context, id int64, update domain.UserUpdate) (*domain.User, error)
	DeleteByID(ctx context.Context, id int64) error

	Stats(ctx context.Context) (*domain.UserStats, error)
}
