package mocks

import (
	"context"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/user"
	"github.com/stretchr/testify/mock"
)

type Directory struct {
	mock.Mock
}

func (m *Directory) GetUser(ctx context.Context, actorID string) (*user.Profile, error) {
	args := m.Called(ctx, actorID)
	p, _ := args.Get(0).(*user.Profile)
	return p, args.Error(1)
}
