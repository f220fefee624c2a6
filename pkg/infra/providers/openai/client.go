package openai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/sync/singleflight"
)

// options are read from providers.Config.Options.
type options struct {
	MaxRetries int    `mapstructure:"max_retries"`
	User       string `mapstructure:"user"`
}

type client struct {
	clientPool *sync.Map
	sf         singleflight.Group
}

// NewOpenaiClient also serves OpenAI-compatible servers when the config
// carries a base URL.
func NewOpenaiClient() providers.Client {
	return &client{
		clientPool: &sync.Map{},
	}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	var opts options
	if err := providers.DecodeOptions(config.Options, &opts); err != nil {
		return nil, fmt.Errorf("invalid openai options: %w", err)
	}

	openaiClient := c.getOrCreateClient(config, opts)

	var messages []openai.ChatCompletionMessageParamUnion
	if config.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(config.SystemPrompt))
	}
	if len(config.Instructions) > 0 {
		messages = append(messages, openai.SystemMessage(providers.FormatInstructions(config.Instructions)))
	}
	if prompt != "" {
		messages = append(messages, openai.UserMessage(prompt))
	}

	params := openai.ChatCompletionNewParams{
		Model:    config.Model,
		Messages: messages,
	}
	if config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(config.MaxTokens))
	}
	if config.Temperature > 0 {
		params.Temperature = openai.Float(config.Temperature)
	}
	if config.TopP > 0 {
		params.TopP = openai.Float(config.TopP)
	}
	if opts.User != "" {
		params.User = openai.String(opts.User)
	}

	resp, err := openaiClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI request failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       resp.ID,
		Model:    resp.Model,
		Response: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: providers.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (c *client) Health(ctx context.Context, config *providers.Config) error {
	_, err := c.ModelInfo(ctx, config)
	return err
}

func (c *client) ModelInfo(ctx context.Context, config *providers.Config) (*providers.ModelInfo, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	var opts options
	if err := providers.DecodeOptions(config.Options, &opts); err != nil {
		return nil, fmt.Errorf("invalid openai options: %w", err)
	}
	model, err := c.getOrCreateClient(config, opts).Models.Get(ctx, config.Model)
	if err != nil {
		return nil, fmt.Errorf("OpenAI model lookup failed: %w", err)
	}
	return &providers.ModelInfo{
		Name:   model.ID,
		Family: model.OwnedBy,
	}, nil
}

func poolKey(config *providers.Config) string {
	return config.Credentials.ApiKey + "|" + config.BaseURL
}

func newClient(config *providers.Config, opts options) *openai.Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(config.Credentials.ApiKey)}
	if config.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(config.BaseURL))
	}
	if opts.MaxRetries > 0 {
		reqOpts = append(reqOpts, option.WithMaxRetries(opts.MaxRetries))
	} else {
		reqOpts = append(reqOpts, option.WithMaxRetries(0))
	}
	cli := openai.NewClient(reqOpts...)
	return &cli
}

func (c *client) getOrCreateClient(config *providers.Config, opts options) *openai.Client {
	key := poolKey(config)
	if v, ok := c.clientPool.Load(key); ok {
		if client, ok := v.(*openai.Client); ok {
			return client
		}
	}
	v, _, _ := c.sf.Do(key, func() (any, error) {
		if v2, ok := c.clientPool.Load(key); ok {
			return v2, nil
		}
		cli := newClient(config, opts)
		c.clientPool.Store(key, cli)
		return cli, nil
	})
	if client, ok := v.(*openai.Client); ok {
		return client
	}
	return newClient(config, opts)
}
