package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

// AuthService defines the authentication lifecycle operations used by
// handlers.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.User, error)
	RequestMagicLink(ctx context.Context, email string) error
	CompleteLogin(ctx context.Context, token string) (model.User, error)
	Logout(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (model.User, error)
	Users(ctx context.Context) ([]model.User, error)
}

// Auth handles HTTP endpoints for registration, login and logout.
type Auth struct {
	service    AuthService
	pagesDir   string
	cookieName string
	logger     *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(service AuthService, pagesDir, cookieName string, logger *logger.Logger) *Auth {
	return &Auth{
		service:    service,
		pagesDir:   pagesDir,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Register handles the registration form: multipart fields username, email
// and an optional avatar file. On success the first magic link is already on
// its way, so the client is sent to the check-email page.
func (h *Auth) Register(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))

	if email == "" {
		return renderErrorPage(c, h.pagesDir, http.StatusBadRequest, "Email is required")
	}
	if username == "" {
		return renderErrorPage(c, h.pagesDir, http.StatusBadRequest, "Username is required")
	}

	params := model.RegisterParams{
		Email:    email,
		Username: username,
	}

	if fileHeader, err := c.FormFile("avatar"); err == nil {
		src, err := fileHeader.Open()
		if err != nil {
			h.logger.Error("Auth handler: failed to open avatar upload",
				"email", email,
				"error", err.Error())
			return renderErrorPage(c, h.pagesDir, http.StatusBadRequest, "Avatar upload is unreadable")
		}
		defer src.Close()

		params.Avatar = src
		params.AvatarExt = strings.ToLower(filepath.Ext(fileHeader.Filename))
	}

	if _, err := h.service.Register(c.Request().Context(), params); err != nil {
		h.logger.Error("Auth handler: registration failed",
			"email", email,
			"error", err.Error())
		return handleError(c, h.pagesDir, err)
	}

	return c.Redirect(http.StatusSeeOther, "/check_email.html")
}

// RequestLogin handles the login form: takes an email and sends a magic
// link to it.
func (h *Auth) RequestLogin(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	if email == "" {
		return renderErrorPage(c, h.pagesDir, http.StatusBadRequest, "Email is required")
	}

	if err := h.service.RequestMagicLink(c.Request().Context(), email); err != nil {
		h.logger.Error("Auth handler: magic link request failed",
			"email", email,
			"error", err.Error())
		return handleError(c, h.pagesDir, err)
	}

	return c.Redirect(http.StatusSeeOther, "/check_email.html")
}

// CompleteLogin consumes the token from the magic-link URL, binds the
// session and sets the session cookie.
func (h *Auth) CompleteLogin(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return renderErrorPage(c, h.pagesDir, http.StatusBadRequest, "Token is required")
	}

	user, err := h.service.CompleteLogin(c.Request().Context(), token)
	if err != nil {
		h.logger.Error("Auth handler: login failed",
			"error", err.Error())
		return handleError(c, h.pagesDir, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	h.logger.Info("Auth handler: user logged in",
		"email", user.Email,
		"user_id", user.ID)

	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout revokes the session held in the cookie and expires the cookie.
// Logging out without a session is not an error.
func (h *Auth) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.logger.Error("Auth handler: logout failed",
				"error", err.Error())
			return handleError(c, h.pagesDir, err)
		}
	}

	clearSessionCookie(c, h.cookieName)

	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}
