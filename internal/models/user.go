package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleHost     = "host"
	RoleAttendee = "attendee"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID            string    `bun:"id,pk" json:"id"`
	Username      string    `bun:"username,unique,notnull" json:"username"`
	Email         string    `bun:"email,unique,notnull" json:"email"`
	Password      string    `bun:"password,notnull" json:"-"`
	Role          string    `bun:"role,notnull,default:'attendee'" json:"role"`
	LoginAttempts int       `bun:"login_attempts,default:0" json:"-"`
	LockUntil     time.Time `bun:"lock_until,nullzero" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// IsLocked reports whether the account is currently locked out
// because of repeated failed logins.
func (u *User) IsLocked() bool {
	return !u.LockUntil.IsZero() && u.LockUntil.After(time.Now())
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserResponse is the public projection of a user. The password hash
// and security counters never leave the service.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
