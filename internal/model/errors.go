package model

import "errors"

var (
	// ErrNotFound is returned by stores when a record is absent.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRegistered is returned when registering an email that is
	// already taken.
	ErrAlreadyRegistered = errors.New("user is already registered")

	// ErrUserNotFound is returned when a token or email refers to no
	// registered user.
	ErrUserNotFound = errors.New("user is not registered")

	// ErrTokenInvalid is returned for tampered or malformed tokens.
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrTokenExpired is returned for well-signed tokens past their expiry.
	ErrTokenExpired = errors.New("token is expired")

	// ErrTokenAlreadyUsed is returned when a magic link is presented a
	// second time for the session it already established.
	ErrTokenAlreadyUsed = errors.New("token is already in use")

	// ErrLoggedOut is returned when a session is validated for a user who
	// holds no active token.
	ErrLoggedOut = errors.New("user is not logged in")
)
