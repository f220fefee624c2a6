package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

type client struct {
	clientPool *sync.Map
	sf         singleflight.Group
}

// NewGeminiClient builds genai clients lazily, one per API key.
func NewGeminiClient() providers.Client {
	return &client{clientPool: &sync.Map{}}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	model := config.Model
	if model == "" {
		model = defaultModel
	}

	genaiClient, err := c.getOrCreateClient(ctx, config)
	if err != nil {
		return nil, err
	}

	generateConfig := &genai.GenerateContentConfig{}
	var parts []*genai.Part
	if config.SystemPrompt != "" {
		parts = append(parts, &genai.Part{Text: config.SystemPrompt})
	}
	if len(config.Instructions) > 0 {
		parts = append(parts, &genai.Part{Text: providers.FormatInstructions(config.Instructions)})
	}
	if len(parts) > 0 {
		generateConfig.SystemInstruction = &genai.Content{Parts: parts}
	}
	if config.Temperature > 0 {
		generateConfig.Temperature = genai.Ptr(float32(config.Temperature))
	}
	if config.TopP > 0 {
		generateConfig.TopP = genai.Ptr(float32(config.TopP))
	}
	if config.MaxTokens > 0 {
		generateConfig.MaxOutputTokens = int32(config.MaxTokens)
	}

	result, err := genaiClient.Models.GenerateContent(ctx, model, genai.Text(prompt), generateConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := strings.TrimSpace(result.Text())
	if responseText == "" {
		return nil, fmt.Errorf("no completions returned")
	}

	resp := &providers.CompletionResponse{
		ID:       fmt.Sprintf("gemini-%d", time.Now().UnixNano()),
		Model:    model,
		Response: responseText,
	}
	if result.UsageMetadata != nil {
		resp.Usage = providers.Usage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func (c *client) getOrCreateClient(ctx context.Context, config *providers.Config) (*genai.Client, error) {
	key := config.Credentials.ApiKey + "|" + config.BaseURL
	if v, ok := c.clientPool.Load(key); ok {
		return v.(*genai.Client), nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		if v2, ok := c.clientPool.Load(key); ok {
			return v2, nil
		}
		cc := &genai.ClientConfig{
			APIKey:  config.Credentials.ApiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if config.BaseURL != "" {
			cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
		}
		cli, err := genai.NewClient(ctx, cc)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		c.clientPool.Store(key, cli)
		return cli, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*genai.Client), nil
}
