package handler

import "github.com/userhub/identity-api/internal/core/domain"

// --- Request / Response types ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// updateUserRequest is a partial update; absent fields stay untouched.
type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=32,alphanum"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

func (r updateUserRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

type authResponse struct {
	Token string             `json:"token"`
	User  *domain.PublicUser `json:"user"`
}

type updateUserResponse struct {
	User *domain.PublicUser `json:"user"`
}

type paginationResponse struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type listUsersResponse struct {
	Users      []*domain.PublicUser `json:"users"`
	Pagination paginationResponse   `json:"pagination"`
}

type messageResponse struct {
	Message string `json:"message"`
}
