package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx/mocks"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestAsk_BuildsGenerateRequest(t *testing.T) {
	httpClient := &mocks.MockHTTPClient{}
	var captured map[string]any
	httpClient.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		if r.Method != http.MethodPost || r.URL.String() != "http://ollama:11434/api/generate" {
			return false
		}
		body, _ := io.ReadAll(r.Body)
		return json.Unmarshal(body, &captured) == nil
	})).Return(jsonResponse(http.StatusOK,
		`{"model":"llama3.2","created_at":"2026-10-01T10:00:00Z","response":" Claro, te ayudo. ","done":true,"prompt_eval_count":30,"eval_count":7}`,
	), nil).Once()

	client := ollama.NewOllamaClient(httpClient)
	resp, err := client.Ask(context.Background(), &providers.Config{
		BaseURL:      "http://ollama:11434/",
		Model:        "llama3.2",
		MaxTokens:    256,
		Temperature:  0.7,
		TopP:         0.9,
		SystemPrompt: "Eres un asistente.",
		Options:      map[string]any{"keep_alive": "5m", "num_ctx": "4096"},
	}, "Pregunta")
	require.NoError(t, err)

	assert.Equal(t, "Claro, te ayudo.", resp.Response)
	assert.Equal(t, 7, resp.TokenCount())
	assert.Equal(t, 37, resp.Usage.TotalTokens)

	assert.Equal(t, "llama3.2", captured["model"])
	assert.Equal(t, "Pregunta", captured["prompt"])
	assert.Equal(t, "Eres un asistente.", captured["system"])
	assert.Equal(t, false, captured["stream"])
	assert.Equal(t, "5m", captured["keep_alive"])
	options, ok := captured["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 256, options["num_predict"])
	assert.EqualValues(t, 4096, options["num_ctx"])
	assert.InDelta(t, 0.7, options["temperature"], 1e-9)
	assert.InDelta(t, 0.9, options["top_p"], 1e-9)
	httpClient.AssertExpectations(t)
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		err     error
		wantErr string
	}{
		{name: "transport", err: errors.New("connection refused"), wantErr: "connection refused"},
		{name: "status", resp: jsonResponse(http.StatusNotFound, `{"error":"model not found"}`), wantErr: "status 404"},
		{name: "malformed", resp: jsonResponse(http.StatusOK, `not json`), wantErr: "malformed"},
		{name: "empty", resp: jsonResponse(http.StatusOK, `{"response":"   ","done":true}`), wantErr: "no completions returned"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient := &mocks.MockHTTPClient{}
			if tt.err != nil {
				httpClient.On("Do", mock.Anything).Return(nil, tt.err)
			} else {
				httpClient.On("Do", mock.Anything).Return(tt.resp, nil)
			}
			resp, err := ollama.NewOllamaClient(httpClient).Ask(context.Background(), &providers.Config{Model: "llama3.2"}, "hola")
			assert.Nil(t, resp)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAsk_RequiresModel(t *testing.T) {
	httpClient := &mocks.MockHTTPClient{}
	_, err := ollama.NewOllamaClient(httpClient).Ask(context.Background(), &providers.Config{}, "hola")
	assert.ErrorContains(t, err, "model is required")
	httpClient.AssertNotCalled(t, "Do", mock.Anything)
}

func TestHealthAndModelInfo(t *testing.T) {
	httpClient := &mocks.MockHTTPClient{}
	httpClient.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		return r.Method == http.MethodGet && r.URL.String() == ollama.DefaultBaseURL+"/api/tags"
	})).Return(jsonResponse(http.StatusOK, `{"models":[{"name":"llama3.2"}]}`), nil)
	httpClient.On("Do", mock.MatchedBy(func(r *http.Request) bool {
		return r.Method == http.MethodPost && r.URL.String() == ollama.DefaultBaseURL+"/api/show"
	})).Return(jsonResponse(http.StatusOK,
		`{"details":{"family":"llama","parameter_size":"3.2B","quantization_level":"Q4_K_M"}}`,
	), nil)

	prober, ok := ollama.NewOllamaClient(httpClient).(providers.Prober)
	require.True(t, ok)
	config := &providers.Config{Model: "llama3.2"}

	require.NoError(t, prober.Health(context.Background(), config))
	info, err := prober.ModelInfo(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, &providers.ModelInfo{
		Name:          "llama3.2",
		Family:        "llama",
		ParameterSize: "3.2B",
		Quantization:  "Q4_K_M",
	}, info)
}
