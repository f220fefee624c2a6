package factory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/anthropic"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/gemini"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/ollama"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/openai"
)

const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

//go:generate mockery --name=ProviderLocator --dir=. --output=./mocks --filename=provider_locator_mock.go --case=underscore
type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct {
	httpClient httpx.Client
	mu         sync.Mutex
	clients    map[string]providers.Client
}

func NewProviderLocator(httpClient httpx.Client) ProviderLocator {
	return &providerLocator{
		httpClient: httpClient,
		clients:    make(map[string]providers.Client),
	}
}

// Get returns one shared client per provider name.
func (f *providerLocator) Get(provider string) (providers.Client, error) {
	name := strings.ToLower(strings.TrimSpace(provider))
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[name]; ok {
		return c, nil
	}
	var c providers.Client
	switch name {
	case ProviderOllama:
		c = ollama.NewOllamaClient(f.httpClient)
	case ProviderOpenAI:
		c = openai.NewOpenaiClient()
	case ProviderAnthropic:
		c = anthropic.NewAnthropicClient()
	case ProviderGemini:
		c = gemini.NewGeminiClient()
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	f.clients[name] = c
	return c, nil
}
