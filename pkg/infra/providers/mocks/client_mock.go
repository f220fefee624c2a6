package mocks

import (
	"context"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Ask(ctx context.Context, config *providers.Config, prompt string) (*providers.CompletionResponse, error) {
	args := m.Called(ctx, config, prompt)
	resp, _ := args.Get(0).(*providers.CompletionResponse)
	return resp, args.Error(1)
}

// ProbingClient also implements providers.Prober.
type ProbingClient struct {
	Client
}

func (m *ProbingClient) Health(ctx context.Context, config *providers.Config) error {
	return m.Called(ctx, config).Error(0)
}

func (m *ProbingClient) ModelInfo(ctx context.Context, config *providers.Config) (*providers.ModelInfo, error) {
	args := m.Called(ctx, config)
	info, _ := args.Get(0).(*providers.ModelInfo)
	return info, args.Error(1)
}
