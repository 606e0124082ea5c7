package service

import (
	"context"
	"errors"
	"time"

	"github.com/userhub/identity-api/internal/core/domain"
	"github.com/userhub/identity-api/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements registration, login and profile lookup.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
	audit  ports.AuditRecorder
}

// NewAuthService wires the auth flows. audit may be nil to disable the trail.
func NewAuthService(repo ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, audit ports.AuditRecorder) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens, audit: audit}
}

// Register creates an account with the default user role and returns a token
// bound to it. Uniqueness is pre-checked for precise errors, but the store's
// atomic insert is what actually guarantees it under concurrency.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *domain.User, error) {
	if len(password) < minPasswordLength {
		return "", nil, domain.ErrWeakPassword
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return "", nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return "", nil, domain.ErrUsernameExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, err
	}

	// Hashing is CPU-bound; it happens here, never inside a store lock.
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", nil, err
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return "", nil, err
	}

	s.record(domain.AuditEvent{
		Action:    domain.AuditRegistered,
		ActorID:   created.ID,
		SubjectID: created.ID,
		Email:     created.Email,
		At:        time.Now().UTC(),
	})
	return token, created, nil
}

// Login verifies credentials and issues a fresh token. An unknown email and a
// wrong password both come back as ErrInvalidCredentials so the response
// never reveals whether the account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(domain.AuditEvent{Action: domain.AuditLoginFailed, Email: email, At: time.Now().UTC()})
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.record(domain.AuditEvent{Action: domain.AuditLoginFailed, SubjectID: user.ID, Email: email, At: time.Now().UTC()})
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.record(domain.AuditEvent{
		Action:    domain.AuditLogin,
		ActorID:   user.ID,
		SubjectID: user.ID,
		Email:     email,
		At:        time.Now().UTC(),
	})
	return token, user, nil
}

// Profile returns the account behind a verified token's user id.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}

// EnsureAdmin creates the bootstrap admin account if no account holds the
// given email yet. Called once at startup; a blank password disables seeding.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	_, err = s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrEmailExists) || errors.Is(err, domain.ErrUsernameExists) {
		return nil
	}
	return err
}

func (s *AuthService) record(event domain.AuditEvent) {
	if s.audit != nil {
		s.audit.Record(event)
	}
}
