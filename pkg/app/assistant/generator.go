package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/knowledge"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/scope"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	"github.com/sirupsen/logrus"
)

type Source string

const (
	SourceAI          Source = "ai"
	SourceFallback    Source = "fallback"
	SourceRedirect    Source = "redirect"
	SourceUnavailable Source = "unavailable"
)

const (
	unavailableMessage = "En este momento el servicio de asistencia no está disponible. " +
		"Por favor intenta más tarde o comunícate directamente con la oficina de Desarrollo Agropecuario."

	DefaultTimeout = 30 * time.Second
	probeTimeout   = 5 * time.Second
)

type Request struct {
	Text    string
	Context session.Context
	History []session.Message
}

type Result struct {
	Text       string
	Source     Source
	Topic      string
	Verdict    scope.Verdict
	Model      string
	TokenCount int
	Latency    time.Duration
	// ModelErr is the model failure recovered by the fallback, if any.
	ModelErr error
}

type ServiceStatus struct {
	AIEnabled       bool                 `json:"ai_enabled"`
	FallbackEnabled bool                 `json:"fallback_enabled"`
	Provider        string               `json:"provider"`
	Model           string               `json:"model"`
	ModelAvailable  bool                 `json:"model_available"`
	ModelInfo       *providers.ModelInfo `json:"model_info,omitempty"`
	Breaker         string               `json:"circuit_breaker"`
	CheckedAt       time.Time            `json:"checked_at"`
}

type Config struct {
	Provider string
	Model    providers.Config
	Timeout  time.Duration
}

//go:generate mockery --name=Generator --dir=. --output=./mocks --filename=generator_mock.go --case=underscore
type Generator interface {
	// Generate never returns an error; model failures are reported in
	// Result.ModelErr and answered by the fallback.
	Generate(ctx context.Context, req Request) Result
	Status(ctx context.Context) ServiceStatus
	Settings() *Settings
}

type generator struct {
	logger    *logrus.Logger
	config    Config
	client    providers.Client
	breaker   httpx.CircuitBreaker
	validator scope.Validator
	responder knowledge.Responder
	settings  *Settings
}

type outcome struct {
	resp *providers.CompletionResponse
	err  error
}

func NewGenerator(
	logger *logrus.Logger,
	config Config,
	client providers.Client,
	breaker httpx.CircuitBreaker,
	validator scope.Validator,
	responder knowledge.Responder,
	settings *Settings,
) Generator {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if settings == nil {
		settings = NewSettings(true, true)
	}
	return &generator{
		logger:    logger,
		config:    config,
		client:    client,
		breaker:   breaker,
		validator: validator,
		responder: responder,
		settings:  settings,
	}
}

func (g *generator) Settings() *Settings {
	return g.settings
}

func (g *generator) Generate(ctx context.Context, req Request) Result {
	verdict := g.validator.Check(req.Text)
	if !verdict.InScope {
		return Result{Text: verdict.Redirect, Source: SourceRedirect, Verdict: verdict}
	}

	var modelErr error
	if g.settings.AIEnabled() && g.client != nil {
		start := time.Now()
		resp, err := g.ask(ctx, BuildPrompt(req.Context, req.History, req.Text))
		latency := time.Since(start)
		if err == nil {
			return Result{
				Text:       resp.Response,
				Source:     SourceAI,
				Verdict:    verdict,
				Model:      resp.Model,
				TokenCount: resp.TokenCount(),
				Latency:    latency,
			}
		}
		modelErr = err
		g.logger.WithError(err).WithFields(logrus.Fields{
			"provider":   g.config.Provider,
			"model":      g.config.Model.Model,
			"latency_ms": latency.Milliseconds(),
		}).Warn("model call failed, using fallback")
	}

	if !g.settings.FallbackEnabled() {
		return Result{Text: unavailableMessage, Source: SourceUnavailable, Verdict: verdict, ModelErr: modelErr}
	}
	reply := g.responder.Respond(req.Text)
	return Result{
		Text:     reply.Text,
		Source:   SourceFallback,
		Topic:    reply.Topic,
		Verdict:  verdict,
		ModelErr: modelErr,
	}
}

// ask runs the model call in its own goroutine. A call that outlives the
// timeout is abandoned and its result dropped.
func (g *generator) ask(ctx context.Context, prompt string) (*providers.CompletionResponse, error) {
	var resp *providers.CompletionResponse
	call := func() error {
		callCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()

		cfg := g.config.Model
		done := make(chan outcome, 1)
		go func() {
			r, err := g.client.Ask(callCtx, &cfg, prompt)
			done <- outcome{resp: r, err: err}
		}()

		select {
		case <-callCtx.Done():
			return callCtx.Err()
		case o := <-done:
			if o.err != nil {
				return o.err
			}
			if o.resp == nil || strings.TrimSpace(o.resp.Response) == "" {
				return errors.New("empty model response")
			}
			o.resp.Response = strings.TrimSpace(o.resp.Response)
			resp = o.resp
			return nil
		}
	}

	var err error
	if g.breaker != nil {
		err = g.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, &domain.ExternalServiceError{Op: fmt.Sprintf("%s.ask", g.config.Provider), Err: err}
	}
	return resp, nil
}

func (g *generator) Status(ctx context.Context) ServiceStatus {
	status := ServiceStatus{
		AIEnabled:       g.settings.AIEnabled(),
		FallbackEnabled: g.settings.FallbackEnabled(),
		Provider:        g.config.Provider,
		Model:           g.config.Model.Model,
		CheckedAt:       time.Now(),
	}
	if g.breaker != nil {
		status.Breaker = g.breaker.State()
	}

	prober, ok := g.client.(providers.Prober)
	if !ok {
		return status
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cfg := g.config.Model
	if err := prober.Health(probeCtx, &cfg); err != nil {
		g.logger.WithError(err).Debug("model health probe failed")
		return status
	}
	status.ModelAvailable = true
	info, err := prober.ModelInfo(probeCtx, &cfg)
	if err != nil {
		g.logger.WithError(err).Debug("model info probe failed")
		return status
	}
	status.ModelInfo = info
	return status
}
