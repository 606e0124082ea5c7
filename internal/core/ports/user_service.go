package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// UserService covers the claims-gated account operations. Every method takes
// the verified requester claims and applies the role/ownership rules itself;
// routing only guarantees that a valid token was presented.
type UserService interface {
	Get(ctx context.Context, requester domain.Claims, targetID int64) (*domain.User, error)
	Update(ctx context.Context, requester domain.Claims, targetID int64, patch domain.UserPatch) (*domain.User, error)
	Delete(ctx context.Context, requester domain.Claims, targetID int64) error
	List(ctx context.Context, requester domain.Claims, page, limit int64) ([]*domain.User, int64, error)
	Stats(ctx context.Context, requester domain.Claims) (*domain.UserStats, error)
}
