package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

// Pages serves the HTML pages: the login page, the session-gated home page
// and the remaining static pages.
type Pages struct {
	service    AuthService
	pagesDir   string
	cookieName string
	logger     *logger.Logger
}

// NewPages creates a new Pages handler.
func NewPages(service AuthService, pagesDir, cookieName string, logger *logger.Logger) *Pages {
	return &Pages{
		service:    service,
		pagesDir:   pagesDir,
		cookieName: cookieName,
		logger:     logger,
	}
}

// Home renders the home page for a valid session and the login page
// otherwise. Unusable cookies are cleared so the next request starts clean.
func (h *Pages) Home(c echo.Context) error {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return h.loginPage(c)
	}

	user, err := h.service.ValidateSession(c.Request().Context(), cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTokenInvalid):
			clearSessionCookie(c, h.cookieName)
			return c.Redirect(http.StatusSeeOther, "/logout")
		case errors.Is(err, model.ErrLoggedOut):
			clearSessionCookie(c, h.cookieName)
			return c.Redirect(http.StatusSeeOther, "/")
		default:
			return handleError(c, h.pagesDir, err)
		}
	}

	html, err := renderPage(h.pagesDir, "home.html", map[string]string{
		"username":       user.Username,
		"avatarFileName": user.AvatarFileName,
	})
	if err != nil {
		h.logger.Error("Pages handler: failed to render home page",
			"error", err.Error())
		return handleError(c, h.pagesDir, err)
	}

	return c.HTML(http.StatusOK, html)
}

// StaticPage serves a file from the pages directory by name.
func (h *Pages) StaticPage(c echo.Context) error {
	name := filepath.Base(c.Param("page"))

	path := filepath.Join(h.pagesDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return c.NoContent(http.StatusNotFound)
	}

	return c.File(path)
}

// Users dumps the user store as JSON.
func (h *Pages) Users(c echo.Context) error {
	users, err := h.service.Users(c.Request().Context())
	if err != nil {
		h.logger.Error("Pages handler: failed to list users",
			"error", err.Error())
		return handleError(c, h.pagesDir, err)
	}

	return c.JSON(http.StatusOK, users)
}

func (h *Pages) loginPage(c echo.Context) error {
	html, err := renderPage(h.pagesDir, "index.html", nil)
	if err != nil {
		h.logger.Error("Pages handler: failed to render login page",
			"error", err.Error())
		return c.String(http.StatusInternalServerError, "Internal server error")
	}
	return c.HTML(http.StatusOK, html)
}
