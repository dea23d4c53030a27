package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	// Authenticate resolves a raw cookie token to its live session and
	// refreshes the last-seen stamp.
	Authenticate(ctx context.Context, rawToken string) (*Session, *User, error)
	ChangePassword(ctx context.Context, userID snowflake.ID, newPassword string) error
}

type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID snowflake.ID
}
