package service

import (
	"context"
	"errors"
	"time"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// UserService implements the claims-gated account operations.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	audit  ports.AuditRecorder
	cache  ports.StatsCache
}

// NewUserService wires the account operations. audit and cache may be nil.
func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, audit ports.AuditRecorder, cache ports.StatsCache) *UserService {
	return &UserService{repo: repo, hasher: hasher, audit: audit, cache: cache}
}

// Get returns the target account. Admins may read anyone, other callers only
// themselves.
func (s *UserService) Get(ctx context.Context, requester domain.Claims, targetID int64) (*domain.User, error) {
	if !requester.CanAccessUser(targetID) {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, targetID)
}

// Update applies a partial update under the same ownership rule as Get.
// Username and email changes conflict when another account already holds the
// value; password changes are rehashed before they reach the store.
func (s *UserService) Update(ctx context.Context, requester domain.Claims, targetID int64, patch domain.UserPatch) (*domain.User, error) {
	if !requester.CanAccessUser(targetID) {
		return nil, domain.ErrForbidden
	}

	var update domain.UserUpdate

	if patch.Username != nil {
		other, err := s.repo.FindByUsername(ctx, *patch.Username)
		switch {
		case err == nil && other.ID != targetID:
			return nil, domain.ErrUsernameExists
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, err
		}
		update.Username = patch.Username
	}

	if patch.Email != nil {
		other, err := s.repo.FindByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != targetID:
			return nil, domain.ErrEmailExists
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, err
		}
		update.Email = patch.Email
	}

	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return nil, domain.ErrWeakPassword
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	updated, err := s.repo.UpdateByID(ctx, targetID, update)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEvent{
		Action:    domain.AuditUpdated,
		ActorID:   requester.UserID,
		SubjectID: targetID,
		Email:     updated.Email,
		At:        time.Now().UTC(),
	})
	return updated, nil
}

// Delete removes the target account. Admin-only, and an admin may not delete
// their own account.
func (s *UserService) Delete(ctx context.Context, requester domain.Claims, targetID int64) error {
	if !requester.IsAdmin() {
		return domain.ErrForbidden
	}
	if requester.UserID == targetID {
		return domain.ErrSelfDeletion
	}

	if err := s.repo.DeleteByID(ctx, targetID); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.record(domain.AuditEvent{
		Action:    domain.AuditDeleted,
		ActorID:   requester.UserID,
		SubjectID: targetID,
		At:        time.Now().UTC(),
	})
	return nil
}

// List returns one offset-based page of accounts plus the total count.
// Admin-only. Pages past the end come back empty, not as an error.
func (s *UserService) List(ctx context.Context, requester domain.Claims, page, limit int64) ([]*domain.User, int64, error) {
	if !requester.IsAdmin() {
		return nil, 0, domain.ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.List(ctx, (page-1)*limit, limit)
}

// Stats returns total and per-role account counts. Admin-only.
func (s *UserService) Stats(ctx context.Context, requester domain.Claims) (*domain.UserStats, error) {
	if !requester.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx); ok {
			return stats, nil
		}
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, stats)
	}
	return stats, nil
}

func (s *UserService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}
