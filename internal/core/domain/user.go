package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models an account as stored. PasswordHash never crosses the API
// boundary; outward representations go through PublicUser.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// PublicUser is the external projection of a User. It is the only user shape
// handlers are allowed to serialize, so the hash cannot leak through a
// forgotten field.
type PublicUser struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Public returns the external projection of u.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserPatch carries a partial update; nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
}

// UserUpdate is the store-level form of a patch: the password has already
// been hashed by the time it reaches a repository.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

// UserStats aggregates account counts by role.
type UserStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	AdminUsers   int64 `json:"adminUsers"`
	RegularUsers int64 `json:"regularUsers"`
}
