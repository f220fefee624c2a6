package mocks

import (
	"context"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/stretchr/testify/mock"
)

type Generator struct {
	mock.Mock
}

func (m *Generator) Generate(ctx context.Context, req assistant.Request) assistant.Result {
	return m.Called(ctx, req).Get(0).(assistant.Result)
}

func (m *Generator) Status(ctx context.Context) assistant.ServiceStatus {
	return m.Called(ctx).Get(0).(assistant.ServiceStatus)
}

func (m *Generator) Settings() *assistant.Settings {
	s, _ := m.Called().Get(0).(*assistant.Settings)
	return s
}
