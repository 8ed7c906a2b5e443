package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/magiclink/server/internal/model"
)

// Mailer is a mock implementation of model.Mailer.
type Mailer struct {
	mock.Mock
}

// NewMailer creates a new Mailer mock bound to the test's lifecycle.
func NewMailer(t interface {
	mock.TestingT
	Cleanup(func())
}) *Mailer {
	m := &Mailer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Mailer) SendMagicLink(ctx context.Context, user model.User, token string) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}
