package mocks

import (
	"context"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/stretchr/testify/mock"
)

type Service struct {
	mock.Mock
}

func (m *Service) SendMessage(ctx context.Context, req conversation.SendRequest) (*conversation.SendResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*conversation.SendResponse)
	return resp, args.Error(1)
}

func (m *Service) StartSession(ctx context.Context, actorID string, forceNew bool) (*conversation.StartResponse, error) {
	args := m.Called(ctx, actorID, forceNew)
	resp, _ := args.Get(0).(*conversation.StartResponse)
	return resp, args.Error(1)
}

func (m *Service) ListSessions(ctx context.Context, actorID string, limit int) ([]session.Summary, error) {
	args := m.Called(ctx, actorID, limit)
	summaries, _ := args.Get(0).([]session.Summary)
	return summaries, args.Error(1)
}

func (m *Service) GetSessionDetails(ctx context.Context, actorID, sessionID string) (*session.Session, error) {
	args := m.Called(ctx, actorID, sessionID)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *Service) CloseSession(ctx context.Context, actorID, sessionID string) (*session.Session, error) {
	args := m.Called(ctx, actorID, sessionID)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *Service) AddFeedback(ctx context.Context, actorID, sessionID string, rating int, comment string) (*session.Session, error) {
	args := m.Called(ctx, actorID, sessionID, rating, comment)
	s, _ := args.Get(0).(*session.Session)
	return s, args.Error(1)
}

func (m *Service) GetQuickReplies(userType string) []string {
	replies, _ := m.Called(userType).Get(0).([]string)
	return replies
}

func (m *Service) GetServiceStatus(ctx context.Context) assistant.ServiceStatus {
	return m.Called(ctx).Get(0).(assistant.ServiceStatus)
}

func (m *Service) ToggleAIResponses(ctx context.Context, actor conversation.Actor, enabled bool) (bool, error) {
	args := m.Called(ctx, actor, enabled)
	return args.Bool(0), args.Error(1)
}
