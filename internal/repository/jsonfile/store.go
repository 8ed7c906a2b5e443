package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository keeps all users in memory and rewrites the whole backing
// JSON file on every mutation. A single mutex makes each
// read-modify-write-persist cycle atomic across concurrent requests; the
// file write itself carries no partial-write guarantee.
type UserRepository struct {
	mu     sync.Mutex
	path   string
	users  []model.User
	logger *logger.Logger
}

// New loads the store from path. A missing or unreadable file degrades to a
// store holding only the seed user; the seed is not written back until the
// first mutation.
func New(path string, seed model.User, logger *logger.Logger) *UserRepository {
	r := &UserRepository{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(data, &r.users)
	}
	if err != nil {
		logger.Warn("failed to load user store, seeding defaults",
			"path", path,
			"error", err.Error())
		r.users = []model.User{seed}
	}

	return r
}

// GetByEmail returns the user registered under email.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}

	return model.User{}, model.ErrNotFound
}

// GetByActiveToken returns the user whose current session token equals token.
func (r *UserRepository) GetByActiveToken(_ context.Context, token string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ActiveToken != nil && *u.ActiveToken == token {
			return u, nil
		}
	}

	return model.User{}, model.ErrNotFound
}

// Register appends a new user and persists the store. Emails are unique:
// registering a taken email fails with model.ErrAlreadyRegistered and leaves
// the store untouched. IDs follow count+1 semantics and are never reclaimed.
func (r *UserRepository) Register(_ context.Context, email, username, avatarFileName string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return model.User{}, model.ErrAlreadyRegistered
		}
	}

	user := model.User{
		ID:             strconv.Itoa(len(r.users) + 1),
		Email:          email,
		Username:       username,
		AvatarFileName: avatarFileName,
	}
	r.users = append(r.users, user)

	if err := r.persist(); err != nil {
		r.users = r.users[:len(r.users)-1]
		return model.User{}, err
	}

	return user, nil
}

// SetActiveToken replaces the user's session token (nil logs the user out)
// and persists the store.
func (r *UserRepository) SetActiveToken(_ context.Context, id string, token *string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID != id {
			continue
		}

		previous := r.users[i].ActiveToken
		r.users[i].ActiveToken = token

		if err := r.persist(); err != nil {
			r.users[i].ActiveToken = previous
			return model.User{}, err
		}

		return r.users[i], nil
	}

	return model.User{}, model.ErrNotFound
}

// All returns a snapshot of every registered user.
func (r *UserRepository) All(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]model.User, len(r.users))
	copy(users, r.users)

	return users, nil
}

func (r *UserRepository) persist() error {
	data, err := json.MarshalIndent(r.users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}

	return nil
}
