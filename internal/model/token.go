package model

import "time"

// TokenManager signs and verifies magic-link tokens.
type TokenManager interface {
	Generate(user User) (string, error)
	Parse(token string) (TokenClaims, error)
}

// TokenClaims is the fixed set of fields carried inside a signed token.
// Payloads are decoded into this struct and validated at parse time; there
// is no open claims map.
type TokenClaims struct {
	UserID    string
	Email     string
	Username  string
	ExpiresAt time.Time
}
