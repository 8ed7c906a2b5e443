package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/magiclink/server/internal/model"
)

// handleError translates a service error into a user-facing error page.
// Every error is recovered at this boundary; nothing propagates as a panic
// or a bare 500 without a page.
func handleError(c echo.Context, pagesDir string, err error) error {
	return renderErrorPage(c, pagesDir, statusForError(err), userMessage(err))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrAlreadyRegistered),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrTokenInvalid),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenAlreadyUsed),
		errors.Is(err, model.ErrLoggedOut):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrAlreadyRegistered):
		return "User is already registered"
	case errors.Is(err, model.ErrUserNotFound):
		return "User is not registered"
	case errors.Is(err, model.ErrTokenInvalid):
		return "Token is invalid"
	case errors.Is(err, model.ErrTokenExpired):
		return "Token is expired"
	case errors.Is(err, model.ErrTokenAlreadyUsed):
		return "Token is already in use"
	case errors.Is(err, model.ErrLoggedOut):
		return "User is not logged in"
	case errors.Is(err, model.ErrNotFound):
		return "Not found"
	default:
		return "Internal server error"
	}
}
