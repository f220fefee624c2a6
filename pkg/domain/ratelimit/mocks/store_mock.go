package mocks

import (
	"context"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (m *Store) Get(ctx context.Context, actorID string, now time.Time, window time.Duration) (*ratelimit.Record, error) {
	args := m.Called(ctx, actorID, now, window)
	record, _ := args.Get(0).(*ratelimit.Record)
	return record, args.Error(1)
}

func (m *Store) RecordAndCheck(
	ctx context.Context,
	actorID string,
	now time.Time,
	policy ratelimit.Policy,
) (ratelimit.Decision, error) {
	args := m.Called(ctx, actorID, now, policy)
	decision, _ := args.Get(0).(ratelimit.Decision)
	return decision, args.Error(1)
}

func (m *Store) Prune(ctx context.Context, now time.Time, window time.Duration) (int, error) {
	args := m.Called(ctx, now, window)
	return args.Int(0), args.Error(1)
}
