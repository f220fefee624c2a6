package session_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	limitermocks "github.com/AgroMunicipal/CitizenAssistant/pkg/app/ratelimit/mocks"
	appsession "github.com/AgroMunicipal/CitizenAssistant/pkg/app/session"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session/mocks"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSweep_ExpiresAndArchives(t *testing.T) {
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	repo := repository.NewMemorySessionRepository(session.DefaultLimits(), &repository.MemorySessionRepositoryOpts{TimeProvider: clock})

	old, err := repo.Create(context.Background(), "u-1", session.Context{}, nil)
	require.NoError(t, err)
	now = now.Add(40 * 24 * time.Hour)
	idle, err := repo.Create(context.Background(), "u-1", session.Context{}, nil)
	require.NoError(t, err)
	now = now.Add(45 * time.Minute)

	limiter := &limitermocks.Limiter{}
	limiter.On("Prune", mock.Anything).Return(2, nil).Once()

	sweeper := appsession.NewSweeper(newLogger(), repo, limiter, appsession.SweeperConfig{
		Interval:     time.Minute,
		ArchiveAfter: 30 * 24 * time.Hour,
	}, &appsession.Opts{TimeProvider: clock})

	result := sweeper.Sweep(context.Background())
	assert.Equal(t, appsession.SweepResult{Expired: 1, Archived: 1, Pruned: 2}, result)

	got, err := repo.FindByID(context.Background(), idle.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, session.StatusExpired, got.Status)

	got, err = repo.FindByID(context.Background(), old.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, session.StatusArchived, got.Status)
	limiter.AssertExpectations(t)
}

func TestSweep_StoreErrorsAreLogged(t *testing.T) {
	repo := &mocks.Repository{}
	repo.On("ExpireIdle", mock.Anything, mock.Anything).Return(0, errors.New("db down"))

	sweeper := appsession.NewSweeper(newLogger(), repo, nil, appsession.SweeperConfig{}, nil)
	result := sweeper.Sweep(context.Background())

	assert.Equal(t, appsession.SweepResult{}, result)
	repo.AssertNotCalled(t, "ArchiveInactive", mock.Anything, mock.Anything)
}

func TestSweeper_StartAndShutdown(t *testing.T) {
	repo := &mocks.Repository{}
	swept := make(chan struct{}, 1)
	repo.On("ExpireIdle", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		select {
		case swept <- struct{}{}:
		default:
		}
	}).Return(0, nil)

	sweeper := appsession.NewSweeper(newLogger(), repo, nil, appsession.SweeperConfig{Interval: 10 * time.Millisecond}, nil)
	sweeper.Start()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	sweeper.Shutdown()
	sweeper.Shutdown()
}
