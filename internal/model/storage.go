package model

import (
	"context"
	"io"
)

// Storage stores uploaded files (avatars, images) under opaque keys.
// Download returns ErrNotFound for missing keys.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
