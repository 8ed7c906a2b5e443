package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"

	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

// Auth implements the magic-link authentication lifecycle: registration,
// link issuance, login completion, logout and session validation.
type Auth struct {
	userStore    model.UserStore
	tokenManager model.TokenManager
	mailer       model.Mailer
	storage      model.Storage
	logger       *logger.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(
	userStore model.UserStore,
	tokenManager model.TokenManager,
	mailer model.Mailer,
	storage model.Storage,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		tokenManager: tokenManager,
		mailer:       mailer,
		storage:      storage,
		logger:       logger,
	}
}

// Register creates a new user, stores the optional avatar, and emails the
// first magic link. The user record persists even when the avatar upload or
// the email send fails afterwards.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.User, error) {
	a.logger.Debug("Auth service: registering user",
		"email", params.Email)

	var avatarFileName string
	if params.Avatar != nil {
		ext := params.AvatarExt
		if ext == "" {
			ext = ".png"
		}
		avatarFileName = "image_" + uuid.NewString() + ext
	}

	user, err := a.userStore.Register(ctx, params.Email, params.Username, avatarFileName)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyRegistered) {
			a.logger.Info("Auth service: user already registered",
				"email", params.Email)
			return model.User{}, err
		}
		return model.User{}, fmt.Errorf("failed to register user: %w", err)
	}

	if params.Avatar != nil {
		if err := a.storage.Upload(ctx, path.Join("avatars", avatarFileName), params.Avatar); err != nil {
			a.logger.Error("Auth service: failed to store avatar",
				"email", user.Email,
				"error", err.Error())
			return model.User{}, fmt.Errorf("failed to store avatar: %w", err)
		}
	}

	if err := a.sendMagicLink(ctx, user); err != nil {
		return model.User{}, err
	}

	a.logger.Info("Auth service: user registered",
		"email", user.Email,
		"user_id", user.ID)

	return user, nil
}

// RequestMagicLink issues a fresh token for a registered user and emails it
// as a login link.
func (a *Auth) RequestMagicLink(ctx context.Context, email string) error {
	a.logger.Debug("Auth service: magic link requested",
		"email", email)

	user, err := a.userStore.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	return a.sendMagicLink(ctx, user)
}

// CompleteLogin verifies a magic-link token and binds it to the user as the
// active session. A link is single-use: presenting the token that already is
// the active session fails with model.ErrTokenAlreadyUsed. A different valid
// token for the same user overwrites the session.
func (a *Auth) CompleteLogin(ctx context.Context, token string) (model.User, error) {
	claims, err := a.tokenManager.Parse(token)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.userStore.GetByEmail(ctx, claims.Email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.ActiveToken != nil && *user.ActiveToken == token {
		return model.User{}, model.ErrTokenAlreadyUsed
	}

	updated, err := a.userStore.SetActiveToken(ctx, user.ID, &token)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to set active token: %w", err)
	}

	a.logger.Info("Auth service: login completed",
		"email", user.Email,
		"user_id", user.ID)

	return updated, nil
}

// Logout revokes the session holding token. Revoking a token no user holds
// is a no-op, not an error.
func (a *Auth) Logout(ctx context.Context, token string) error {
	user, err := a.userStore.GetByActiveToken(ctx, token)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by token: %w", err)
	}

	if _, err := a.userStore.SetActiveToken(ctx, user.ID, nil); err != nil {
		return fmt.Errorf("failed to clear active token: %w", err)
	}

	a.logger.Info("Auth service: user logged out",
		"email", user.Email,
		"user_id", user.ID)

	return nil
}

// ValidateSession checks a presented session token for page rendering. It
// requires a verifiable, unexpired token and a logged-in user, but does not
// require the token to match the stored active token; CompleteLogin is the
// stricter check.
func (a *Auth) ValidateSession(ctx context.Context, token string) (model.User, error) {
	claims, err := a.tokenManager.Parse(token)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.userStore.GetByEmail(ctx, claims.Email)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !user.LoggedIn() {
		return model.User{}, model.ErrLoggedOut
	}

	return user, nil
}

// Users returns a snapshot of every registered user.
func (a *Auth) Users(ctx context.Context) ([]model.User, error) {
	return a.userStore.All(ctx)
}

func (a *Auth) sendMagicLink(ctx context.Context, user model.User) error {
	token, err := a.tokenManager.Generate(user)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	if err := a.mailer.SendMagicLink(ctx, user, token); err != nil {
		a.logger.Error("Auth service: failed to send magic link",
			"email", user.Email,
			"error", err.Error())
		return fmt.Errorf("failed to send magic link: %w", err)
	}

	a.logger.Info("Auth service: magic link sent",
		"email", user.Email)

	return nil
}
