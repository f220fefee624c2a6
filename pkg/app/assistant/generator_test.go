package assistant_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/knowledge"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/scope"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newGenerator(client providers.Client, breaker httpx.CircuitBreaker, settings *assistant.Settings, timeout time.Duration) assistant.Generator {
	return assistant.NewGenerator(
		newLogger(),
		assistant.Config{
			Provider: "ollama",
			Model:    providers.Config{Model: "llama3.2", Temperature: 0.7, TopP: 0.9, MaxTokens: 500},
			Timeout:  timeout,
		},
		client,
		breaker,
		scope.NewDefaultValidator(scope.FixedSelector(0)),
		knowledge.NewDefaultResponder(),
		settings,
	)
}

func capacitacionesResponse(t *testing.T) string {
	for _, e := range knowledge.DefaultEntries() {
		if e.Topic == "capacitaciones" {
			return e.Response
		}
	}
	t.Fatal("capacitaciones entry missing")
	return ""
}

func TestGenerate_OutOfScopeNeverCallsModel(t *testing.T) {
	client := &mocks.Client{}
	g := newGenerator(client, nil, nil, time.Second)

	res := g.Generate(context.Background(), assistant.Request{Text: "¿cuál es la capital de Francia?"})

	assert.Equal(t, assistant.SourceRedirect, res.Source)
	assert.Equal(t, scope.DefaultRedirects[0], res.Text)
	assert.False(t, res.Verdict.InScope)
	client.AssertNumberOfCalls(t, "Ask", 0)
}

func TestGenerate_UsesModelAnswer(t *testing.T) {
	client := &mocks.Client{}
	client.On("Ask", mock.Anything, mock.MatchedBy(func(c *providers.Config) bool {
		return c.Model == "llama3.2" && c.TopP == 0.9
	}), mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Tipo de usuario: productor")
	})).Return(&providers.CompletionResponse{
		Model:    "llama3.2",
		Response: "  Hay apoyos para semillas mejoradas.  ",
		Usage:    providers.Usage{CompletionTokens: 9},
	}, nil).Once()

	g := newGenerator(client, httpx.NewCircuitBreaker("model", time.Minute, 3), nil, time.Second)
	res := g.Generate(context.Background(), assistant.Request{
		Text:    "¿Qué apoyos hay para semillas?",
		Context: session.Context{UserType: "productor"},
	})

	assert.Equal(t, assistant.SourceAI, res.Source)
	assert.Equal(t, "Hay apoyos para semillas mejoradas.", res.Text)
	assert.Equal(t, 9, res.TokenCount)
	assert.NoError(t, res.ModelErr)
	client.AssertExpectations(t)
}

func TestGenerate_ModelUnreachableFallsBackToKnowledgeBase(t *testing.T) {
	client := &mocks.Client{}
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("dial tcp: connection refused")).Once()

	g := newGenerator(client, httpx.NewCircuitBreaker("model", time.Minute, 3), nil, time.Second)
	res := g.Generate(context.Background(), assistant.Request{Text: "capacitaciones"})

	assert.Equal(t, assistant.SourceFallback, res.Source)
	assert.Equal(t, capacitacionesResponse(t), res.Text)
	assert.Equal(t, "capacitaciones", res.Topic)
	var extErr *domain.ExternalServiceError
	assert.ErrorAs(t, res.ModelErr, &extErr)
	client.AssertNumberOfCalls(t, "Ask", 1)
}

func TestGenerate_TimeoutAbandonsCall(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	client := &mocks.Client{}
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&providers.CompletionResponse{Response: "tarde"}, nil).Once()

	g := newGenerator(client, nil, nil, 20*time.Millisecond)
	start := time.Now()
	res := g.Generate(context.Background(), assistant.Request{Text: "capacitaciones"})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, assistant.SourceFallback, res.Source)
	assert.Equal(t, capacitacionesResponse(t), res.Text)
	assert.ErrorIs(t, res.ModelErr, context.DeadlineExceeded)
}

func TestGenerate_EmptyModelOutputFallsBack(t *testing.T) {
	client := &mocks.Client{}
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).
		Return(&providers.CompletionResponse{Response: "   "}, nil).Once()

	g := newGenerator(client, nil, nil, time.Second)
	res := g.Generate(context.Background(), assistant.Request{Text: "capacitaciones"})

	assert.Equal(t, assistant.SourceFallback, res.Source)
	assert.Error(t, res.ModelErr)
}

func TestGenerate_FallbackDisabledReturnsUnavailable(t *testing.T) {
	client := &mocks.Client{}
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("status 503")).Once()

	g := newGenerator(client, nil, assistant.NewSettings(true, false), time.Second)
	res := g.Generate(context.Background(), assistant.Request{Text: "capacitaciones"})

	assert.Equal(t, assistant.SourceUnavailable, res.Source)
	assert.NotEmpty(t, res.Text)
	assert.NotEqual(t, capacitacionesResponse(t), res.Text)
}

func TestGenerate_AIDisabledSkipsModel(t *testing.T) {
	client := &mocks.Client{}
	settings := assistant.NewSettings(true, true)
	g := newGenerator(client, nil, settings, time.Second)

	assert.True(t, g.Settings().SetAIEnabled(false))
	res := g.Generate(context.Background(), assistant.Request{Text: "capacitaciones"})

	assert.Equal(t, assistant.SourceFallback, res.Source)
	assert.NoError(t, res.ModelErr)
	client.AssertNumberOfCalls(t, "Ask", 0)
}

func TestGenerate_OpenBreakerSkipsModel(t *testing.T) {
	client := &mocks.Client{}
	client.On("Ask", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Times(2)

	breaker := httpx.NewCircuitBreaker("model", time.Minute, 2)
	g := newGenerator(client, breaker, nil, time.Second)

	for i := 0; i < 4; i++ {
		res := g.Generate(context.Background(), assistant.Request{Text: "capacitaciones"})
		require.Equal(t, assistant.SourceFallback, res.Source)
	}
	assert.Equal(t, "open", breaker.State())
	client.AssertNumberOfCalls(t, "Ask", 2)
}

func TestStatus_ReportsModelHealth(t *testing.T) {
	client := &mocks.ProbingClient{}
	client.On("Health", mock.Anything, mock.Anything).Return(nil).Once()
	client.On("ModelInfo", mock.Anything, mock.Anything).
		Return(&providers.ModelInfo{Name: "llama3.2", Family: "llama"}, nil).Once()

	g := newGenerator(client, httpx.NewCircuitBreaker("model", time.Minute, 2), nil, time.Second)
	status := g.Status(context.Background())

	assert.True(t, status.AIEnabled)
	assert.True(t, status.FallbackEnabled)
	assert.True(t, status.ModelAvailable)
	assert.Equal(t, "ollama", status.Provider)
	assert.Equal(t, "closed", status.Breaker)
	require.NotNil(t, status.ModelInfo)
	assert.Equal(t, "llama", status.ModelInfo.Family)
}

func TestStatus_UnhealthyModel(t *testing.T) {
	client := &mocks.ProbingClient{}
	client.On("Health", mock.Anything, mock.Anything).Return(errors.New("down")).Once()

	status := newGenerator(client, nil, nil, time.Second).Status(context.Background())

	assert.False(t, status.ModelAvailable)
	assert.Nil(t, status.ModelInfo)
	client.AssertNotCalled(t, "ModelInfo", mock.Anything, mock.Anything)
}
