package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// renderPage reads an HTML page from dir and substitutes {{name}}
// placeholders. Pages are plain files with literal markers, not Go
// templates.
func renderPage(dir, name string, vars map[string]string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to read page %s: %w", name, err)
	}

	oldnew := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		oldnew = append(oldnew, "{{"+k+"}}", v)
	}

	return strings.NewReplacer(oldnew...).Replace(string(data)), nil
}

// renderErrorPage responds with the hydrated error page. It falls back to a
// plain text body when the page itself cannot be read.
func renderErrorPage(c echo.Context, pagesDir string, status int, message string) error {
	html, err := renderPage(pagesDir, "error.html", map[string]string{"error": message})
	if err != nil {
		return c.String(status, message)
	}
	return c.HTML(status, html)
}

// clearSessionCookie expires the session cookie on the client by setting an
// empty value with a past expiration.
func clearSessionCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	})
}
