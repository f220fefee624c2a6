package anthropic

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultMaxTokens = 512

type client struct {
	clientPool *sync.Map
}

func NewAnthropicClient() providers.Client {
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

	anthropicClient := c.getOrCreateClient(config)

	model := anthropic.ModelClaudeHaiku4_5
	if config.Model != "" {
		model = anthropic.Model(config.Model)
	}

	maxTokens := int64(config.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	system := config.SystemPrompt
	if len(config.Instructions) > 0 {
		system = strings.TrimSpace(system + "\n\n" + providers.FormatInstructions(config.Instructions))
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system, Type: "text"}}
	}
	if config.Temperature > 0 {
		params.Temperature = anthropic.Float(config.Temperature)
	}
	if config.TopP > 0 {
		params.TopP = anthropic.Float(config.TopP)
	}

	message, err := anthropicClient.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}

	var responseText string
	for _, content := range message.Content {
		if content.Type == "text" {
			responseText = strings.TrimSpace(content.Text)
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("no completions returned")
	}

	return &providers.CompletionResponse{
		ID:       message.ID,
		Model:    string(model),
		Response: responseText,
		Usage: providers.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func (c *client) getOrCreateClient(config *providers.Config) *anthropic.Client {
	key := config.Credentials.ApiKey + "|" + config.BaseURL
	if v, ok := c.clientPool.Load(key); ok {
		if client, ok := v.(*anthropic.Client); ok {
			return client
		}
	}
	opts := []option.RequestOption{option.WithAPIKey(config.Credentials.ApiKey), option.WithMaxRetries(0)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	newClient := anthropic.NewClient(opts...)
	actual, _ := c.clientPool.LoadOrStore(key, &newClient)
	return actual.(*anthropic.Client)
}
