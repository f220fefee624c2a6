package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	maxErrorBody   = 512
)

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
	NumCtx      int     `json:"num_ctx,omitempty"`
}

type generateRequest struct {
	Model     string          `json:"model"`
	Prompt    string          `json:"prompt"`
	System    string          `json:"system,omitempty"`
	Stream    bool            `json:"stream"`
	KeepAlive string          `json:"keep_alive,omitempty"`
	Options   generateOptions `json:"options"`
}

type generateResponse struct {
	Model           string `json:"model"`
	CreatedAt       string `json:"created_at"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

type showResponse struct {
	Details struct {
		Family            string `json:"family"`
		ParameterSize     string `json:"parameter_size"`
		QuantizationLevel string `json:"quantization_level"`
	} `json:"details"`
}

// options are read from providers.Config.Options.
type options struct {
	KeepAlive string `mapstructure:"keep_alive"`
	NumCtx    int    `mapstructure:"num_ctx"`
}

type client struct {
	httpClient httpx.Client
}

// NewOllamaClient talks to an Ollama-compatible generate API.
func NewOllamaClient(httpClient httpx.Client) providers.Client {
	return &client{httpClient: httpClient}
}

func baseURL(config *providers.Config) string {
	if config.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(config.BaseURL, "/")
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	var opts options
	if err := providers.DecodeOptions(config.Options, &opts); err != nil {
		return nil, fmt.Errorf("invalid ollama options: %w", err)
	}

	system := config.SystemPrompt
	if len(config.Instructions) > 0 {
		system = strings.TrimSpace(system + "\n\n" + providers.FormatInstructions(config.Instructions))
	}
	reqBody := generateRequest{
		Model:     config.Model,
		Prompt:    prompt,
		System:    system,
		Stream:    false,
		KeepAlive: opts.KeepAlive,
		Options: generateOptions{
			Temperature: config.Temperature,
			TopP:        config.TopP,
			NumPredict:  config.MaxTokens,
			NumCtx:      opts.NumCtx,
		},
	}

	var out generateResponse
	if err := c.do(ctx, http.MethodPost, baseURL(config)+"/api/generate", reqBody, &out); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return nil, fmt.Errorf("no completions returned")
	}
	return &providers.CompletionResponse{
		ID:       fmt.Sprintf("ollama-%s", out.CreatedAt),
		Model:    out.Model,
		Response: text,
		Usage: providers.Usage{
			PromptTokens:     out.PromptEvalCount,
			CompletionTokens: out.EvalCount,
			TotalTokens:      out.PromptEvalCount + out.EvalCount,
		},
	}, nil
}

func (c *client) Health(ctx context.Context, config *providers.Config) error {
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	return c.do(ctx, http.MethodGet, baseURL(config)+"/api/tags", nil, &out)
}

func (c *client) ModelInfo(ctx context.Context, config *providers.Config) (*providers.ModelInfo, error) {
	var out showResponse
	if err := c.do(ctx, http.MethodPost, baseURL(config)+"/api/show", map[string]string{"model": config.Model}, &out); err != nil {
		return nil, err
	}
	return &providers.ModelInfo{
		Name:          config.Model,
		Family:        out.Details.Family,
		ParameterSize: out.Details.ParameterSize,
		Quantization:  out.Details.QuantizationLevel,
	}, nil
}

func (c *client) do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("malformed ollama response: %w", err)
	}
	return nil
}
