package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/magiclink/server/internal/model"
)

// UserStore is a mock implementation of model.UserStore.
type UserStore struct {
	mock.Mock
}

// NewUserStore creates a new UserStore mock bound to the test's lifecycle.
func NewUserStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *UserStore {
	m := &UserStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByActiveToken(ctx context.Context, token string) (model.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Register(ctx context.Context, email, username, avatarFileName string) (model.User, error) {
	args := m.Called(ctx, email, username, avatarFileName)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) SetActiveToken(ctx context.Context, id string, token *string) (model.User, error) {
	args := m.Called(ctx, id, token)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) All(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)

	var users []model.User
	if args.Get(0) != nil {
		users = args.Get(0).([]model.User)
	}
	return users, args.Error(1)
}
