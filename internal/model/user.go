package model

import (
	"context"
	"io"
)

// UserStore defines persistence operations for users. Every mutation must be
// durable before the call returns.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByActiveToken(ctx context.Context, token string) (User, error)
	Register(ctx context.Context, email, username, avatarFileName string) (User, error)
	SetActiveToken(ctx context.Context, id string, token *string) (User, error)
	All(ctx context.Context) ([]User, error)
}

// User represents a registered account. ActiveToken holds the current
// session token and is nil while the user is logged out. The JSON tags
// match the persisted users.json records.
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	AvatarFileName string  `json:"avatarFileName,omitempty"`
	ActiveToken    *string `json:"token,omitempty"`
}

// LoggedIn reports whether the user currently holds a session token.
func (u User) LoggedIn() bool {
	return u.ActiveToken != nil
}

// RegisterParams contains parameters to register a new user. Avatar is
// optional; when set, AvatarExt carries the uploaded file's extension.
type RegisterParams struct {
	Email     string
	Username  string
	Avatar    io.Reader
	AvatarExt string
}
