package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email exists")
	ErrUsernameExists     = errors.New("username exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrSelfDeletion       = errors.New("cannot delete own account")
	ErrWeakPassword       = errors.New("password does not meet minimum strength")

	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
)
