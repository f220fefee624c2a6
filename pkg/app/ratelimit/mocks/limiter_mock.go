package mocks

import (
	"context"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
	"github.com/stretchr/testify/mock"
)

type Limiter struct {
	mock.Mock
}

func (m *Limiter) Allow(ctx context.Context, actorID string) error {
	return m.Called(ctx, actorID).Error(0)
}

func (m *Limiter) Status(ctx context.Context, actorID string) (*ratelimit.Record, error) {
	args := m.Called(ctx, actorID)
	r, _ := args.Get(0).(*ratelimit.Record)
	return r, args.Error(1)
}

func (m *Limiter) Prune(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
