package mocks

import (
	"context"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) sessionResult(args mock.Arguments) (*session.Session, error) {
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *Repository) Create(
	ctx context.Context,
	ownerID string,
	sessionContext session.Context,
	initial *session.Message,
) (*session.Session, error) {
	return m.sessionResult(m.Called(ctx, ownerID, sessionContext, initial))
}

func (m *Repository) FindActive(ctx context.Context, ownerID string) (*session.Session, error) {
	return m.sessionResult(m.Called(ctx, ownerID))
}

func (m *Repository) FindByID(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	return m.sessionResult(m.Called(ctx, sessionID, ownerID))
}

func (m *Repository) AppendMessages(
	ctx context.Context,
	sessionID string,
	messages ...session.Message,
) (*session.Session, error) {
	return m.sessionResult(m.Called(ctx, sessionID, messages))
}

func (m *Repository) Close(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	return m.sessionResult(m.Called(ctx, sessionID, ownerID))
}

func (m *Repository) AttachFeedback(
	ctx context.Context,
	sessionID, ownerID string,
	feedback session.Feedback,
) (*session.Session, error) {
	return m.sessionResult(m.Called(ctx, sessionID, ownerID, feedback))
}

func (m *Repository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]session.Summary, error) {
	args := m.Called(ctx, ownerID, limit)
	summaries, _ := args.Get(0).([]session.Summary)
	return summaries, args.Error(1)
}

func (m *Repository) ExpireIdle(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *Repository) ArchiveInactive(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}
