package ports

import "github.com/userhub/identity-api/internal/core/domain"

// TokenService issues and verifies bearer tokens.
//
// Verify reports exactly one of domain.ErrTokenMalformed,
// domain.ErrTokenInvalid or domain.ErrTokenExpired on failure. Expiry is only
// reported for tokens whose signature already verified; a forged expiry claim
// never reaches the clock check.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	Verify(token string) (domain.Claims, error)
}
