package handler

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

// Files handles avatar serving and generic image upload/download against
// the storage backend.
type Files struct {
	storage model.Storage
	logger  *logger.Logger
}

// NewFiles creates a new Files handler.
func NewFiles(storage model.Storage, logger *logger.Logger) *Files {
	return &Files{storage: storage, logger: logger}
}

// Avatar streams a stored avatar image.
func (h *Files) Avatar(c echo.Context) error {
	name := filepath.Base(c.Param("name"))
	return h.stream(c, path.Join("avatars", name))
}

// Upload stores a multipart image under images/. Uploads without an
// original file name get a generated one.
func (h *Files) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("image_file")
	if err != nil {
		return c.String(http.StatusBadRequest, "image_file is required")
	}

	name := filepath.Base(fileHeader.Filename)
	if name == "" || name == "." {
		name = "image_file-" + uuid.NewString() + ".jpg"
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Files handler: failed to open upload",
			"error", err.Error())
		return c.String(http.StatusBadRequest, "upload is unreadable")
	}
	defer src.Close()

	key := path.Join("images", name)
	if err := h.storage.Upload(c.Request().Context(), key, src); err != nil {
		h.logger.Error("Files handler: failed to store upload",
			"key", key,
			"error", err.Error())
		return c.String(http.StatusInternalServerError, "failed to store file")
	}

	h.logger.Info("Files handler: file uploaded",
		"key", key)

	return c.NoContent(http.StatusOK)
}

// Download streams a stored file by the fileName query parameter.
func (h *Files) Download(c echo.Context) error {
	name := c.QueryParam("fileName")
	if name == "" {
		return c.String(http.StatusBadRequest, "fileName is required")
	}

	// Collapse any ".." before handing the key to storage.
	key := strings.TrimPrefix(path.Clean("/"+name), "/")

	return h.stream(c, key)
}

func (h *Files) stream(c echo.Context, key string) error {
	reader, err := h.storage.Download(c.Request().Context(), key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		h.logger.Error("Files handler: failed to read file",
			"key", key,
			"error", err.Error())
		return c.String(http.StatusInternalServerError, "failed to read file")
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.Stream(http.StatusOK, contentType, reader)
}
