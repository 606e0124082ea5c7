package ports

import (
	"context"

	"github.com/userhub/identity-api/internal/core/domain"
)

// StatsCache is an optional read-through cache for the stats aggregate.
// Get reports ok=false on a miss or any cache failure; the caller falls back
// to the repository either way.
type StatsCache interface {
	Get(ctx context.Context) (*domain.UserStats, bool)
	Set(ctx context.Context, stats *domain.UserStats)
	Invalidate(ctx context.Context)
}
