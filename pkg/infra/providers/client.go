package providers

import (
	"context"
)

type Config struct {
	Credentials  Credentials    `mapstructure:"credentials"`
	BaseURL      string         `mapstructure:"base_url"`
	Model        string         `mapstructure:"model"`
	MaxTokens    int            `mapstructure:"max_tokens"`
	Temperature  float64        `mapstructure:"temperature"`
	TopP         float64        `mapstructure:"top_p"`
	SystemPrompt string         `mapstructure:"system_prompt"`
	Instructions []string       `mapstructure:"instructions"`
	Options      map[string]any `mapstructure:"options"`
}

type Credentials struct {
	ApiKey string `mapstructure:"api_key"`
}

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=client_mock.go --case=underscore
type Client interface {
	Ask(ctx context.Context, config *Config, prompt string) (*CompletionResponse, error)
}

// Prober is implemented by clients that can check the model service.
// Both calls are best effort.
type Prober interface {
	Health(ctx context.Context, config *Config) error
	ModelInfo(ctx context.Context, config *Config) (*ModelInfo, error)
}

type ModelInfo struct {
	Name          string `json:"name"`
	Family        string `json:"family,omitempty"`
	ParameterSize string `json:"parameter_size,omitempty"`
	Quantization  string `json:"quantization,omitempty"`
}
