package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/magiclink/server/internal/model"
)

func TestJWT_Roundtrip(t *testing.T) {
	j := NewJWT("secret", 0)
	user := model.User{ID: "7", Email: "alice@example.com", Username: "Alice"}

	tokenString, err := j.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := j.Parse(tokenString)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, user.Username, claims.Username)
	require.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt, time.Minute)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("secret", -time.Minute)

	tokenString, err := j.Generate(model.User{ID: "1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = j.Parse(tokenString)
	require.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestJWT_Tampered(t *testing.T) {
	j := NewJWT("secret", 0)

	tokenString, err := j.Generate(model.User{ID: "1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = j.Parse(tokenString + "x")
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_WrongSecret(t *testing.T) {
	issuer := NewJWT("secret", 0)
	verifier := NewJWT("other-secret", 0)

	tokenString, err := issuer.Generate(model.User{ID: "1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = verifier.Parse(tokenString)
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestJWT_Garbage(t *testing.T) {
	j := NewJWT("secret", 0)

	_, err := j.Parse("not-a-token")
	require.ErrorIs(t, err, model.ErrTokenInvalid)
}
