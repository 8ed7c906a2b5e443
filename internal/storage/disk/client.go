package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/magiclink/server/internal/model"
)

var _ model.Storage = (*Client)(nil)

// Client stores uploaded files under a root directory on the local
// filesystem. This is the default storage backend; avatars live under
// avatars/ and generic uploads under images/.
type Client struct {
	root string
}

// NewClient creates a disk storage client rooted at root, creating the
// directory when needed.
func NewClient(root string) (*Client, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Client{root: root}, nil
}

// Upload writes the reader's content to the file named by key.
func (c *Client) Upload(_ context.Context, key string, reader io.Reader) error {
	name := c.resolve(key)

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("failed to write file %s: %w", key, err)
	}

	return nil
}

// Download opens the file named by key for reading.
func (c *Client) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(c.resolve(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file %s: %w", key, err)
	}
	return f, nil
}

// Delete removes the file named by key. Deleting a missing file is a no-op.
func (c *Client) Delete(_ context.Context, key string) error {
	err := os.Remove(c.resolve(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}

// Exists reports whether a file is stored under key.
func (c *Client) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(c.resolve(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", key, err)
	}
	return true, nil
}

// resolve maps a storage key to a path under the root. Cleaning the key with
// a leading slash collapses any ".." so the result cannot escape the root.
func (c *Client) resolve(key string) string {
	cleaned := path.Clean("/" + key)
	return filepath.Join(c.root, filepath.FromSlash(cleaned))
}
