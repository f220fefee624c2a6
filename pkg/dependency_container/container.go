package dependency_container

import (
	"fmt"
	"strings"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/conversation"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/knowledge"
	appRatelimit "github.com/AgroMunicipal/CitizenAssistant/pkg/app/ratelimit"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/sanitizer"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/scope"
	appSession "github.com/AgroMunicipal/CitizenAssistant/pkg/app/session"
	appUser "github.com/AgroMunicipal/CitizenAssistant/pkg/app/user"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/config"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
	domainSession "github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	handlers "github.com/AgroMunicipal/CitizenAssistant/pkg/handlers/http"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/cache"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/database"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/directory"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/httpx"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/jwt"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/metrics"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/prometheus"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers"
	providersFactory "github.com/AgroMunicipal/CitizenAssistant/pkg/infra/providers/factory"
	infraRatelimit "github.com/AgroMunicipal/CitizenAssistant/pkg/infra/ratelimit"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/repository"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/middleware"
	"github.com/sirupsen/logrus"
)

const breakerName = "model"

type Container struct {
	Cache               cache.Client
	SessionRepository   domainSession.Repository
	Limiter             appRatelimit.Limiter
	Generator           assistant.Generator
	ConversationService conversation.Service
	Sweeper             appSession.Sweeper
	MetricsWorker       metrics.Worker
	JWTManager          jwt.Manager
	HandlerTransport    *handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// DB is required when assistant.session_store is postgres.
	DB *database.DB
	// Locator overrides the model provider factory.
	Locator providersFactory.ProviderLocator
	// Profiles overrides the directory backed profile finder.
	Profiles appUser.Finder
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg
	logger := di.Logger

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableModelLatency: cfg.Metrics.EnableModelLatency,
		EnableHTTP:         cfg.Metrics.EnableHTTP,
	})

	var cacheInstance cache.Client
	if cfg.RedisRequired() {
		c, err := cache.NewClient(cache.Config{
			Host:       cfg.Redis.Host,
			Port:       cfg.Redis.Port,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			TLS:        cfg.Redis.TLS,
			ProfileTTL: cfg.Directory.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		cacheInstance = c
	}

	limits := domainSession.Limits{
		MaxActivePerOwner: cfg.Assistant.MaxActiveSessions,
		MaxMessages:       cfg.Assistant.MaxMessages,
		IdleTimeout:       cfg.Assistant.SessionTimeout,
	}
	sessionRepository, err := newSessionRepository(cfg, di.DB, limits)
	if err != nil {
		return nil, err
	}

	store, err := newRateLimitStore(cfg, cacheInstance)
	if err != nil {
		return nil, err
	}
	limiter := appRatelimit.NewLimiter(logger, store, ratelimit.Policy{
		MaxPerWindow:  cfg.RateLimit.MaxPerWindow,
		Window:        cfg.RateLimit.Window,
		BlockDuration: cfg.RateLimit.BlockDuration,
	}, nil)

	modelHTTPClient := httpx.NewFastHTTPClient(httpx.WithTimeout(cfg.LLM.Timeout))
	locator := di.Locator
	if locator == nil {
		locator = providersFactory.NewProviderLocator(modelHTTPClient)
	}
	modelClient, err := locator.Get(cfg.LLM.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model provider: %w", err)
	}

	breaker := httpx.NewCircuitBreaker(
		breakerName,
		cfg.LLM.BreakerTimeout,
		uint32(cfg.LLM.BreakerFailures),
		func(name, from, to string) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from,
				"to":      to,
			}).Warn("model circuit breaker changed state")
			open := 0.0
			if to == "open" {
				open = 1
			}
			prometheus.BreakerState.WithLabelValues(name).Set(open)
		},
	)

	responder := knowledge.NewDefaultResponder()
	validator := scope.NewDefaultValidator(scope.NewRandomSelector(time.Now().UnixNano()))
	generator := assistant.NewGenerator(
		logger,
		assistant.Config{
			Provider: strings.ToLower(cfg.LLM.Provider),
			Model: providers.Config{
				Credentials: providers.Credentials{ApiKey: cfg.LLM.APIKey},
				BaseURL:     cfg.LLM.BaseURL,
				Model:       cfg.LLM.Model,
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: cfg.LLM.Temperature,
				TopP:        cfg.LLM.TopP,
				Options:     cfg.LLM.Options,
			},
			Timeout: cfg.LLM.Timeout,
		},
		modelClient,
		breaker,
		validator,
		responder,
		assistant.NewSettings(cfg.LLM.AIEnabled, cfg.LLM.FallbackEnabled),
	)

	profiles := di.Profiles
	if profiles == nil {
		directoryClient := directory.NewClient(
			httpx.NewFastHTTPClient(httpx.WithTimeout(cfg.Directory.Timeout)),
			directory.Config{
				BaseURL:  cfg.Directory.BaseURL,
				Token:    cfg.Directory.Token,
				Timeout:  cfg.Directory.Timeout,
				CacheTTL: cfg.Directory.CacheTTL,
			},
		)
		memoryCache := cache.NewTTLMap(cfg.Directory.CacheTTL)
		if cacheInstance != nil {
			memoryCache = cacheInstance.CreateTTLMap(cache.ProfileTTLName, cfg.Directory.CacheTTL)
		}
		profiles = appUser.NewFinder(directoryClient, cacheInstance, memoryCache, logger)
	}

	denylist := cfg.Sanitizer.Denylist
	if len(denylist) == 0 {
		denylist = sanitizer.DefaultConfig().Denylist
	}
	inputSanitizer := sanitizer.NewSanitizer(sanitizer.Config{
		MinLength: cfg.Sanitizer.MinLength,
		MaxLength: cfg.Sanitizer.MaxLength,
		Denylist:  denylist,
	})

	metricsWorker := metrics.NewWorker(logger)
	hook := conversation.NewAsyncHook(metricsWorker, conversation.Hooks{
		conversation.NewLoggingHook(logger),
		conversation.NewMetricsHook(strings.ToLower(cfg.LLM.Provider)),
	})

	conversationService := conversation.NewService(
		logger,
		conversation.Config{
			HistorySize:      cfg.Assistant.HistorySize,
			MaxMessages:      cfg.Assistant.MaxMessages,
			MaxCommentLength: cfg.Sanitizer.MaxCommentLength,
		},
		sessionRepository,
		profiles,
		inputSanitizer,
		limiter,
		generator,
		responder,
		hook,
		nil,
	)

	sweeper := appSession.NewSweeper(logger, sessionRepository, limiter, appSession.SweeperConfig{
		Interval:     cfg.Assistant.SweepInterval,
		ArchiveAfter: cfg.Assistant.ArchiveAfter,
	}, nil)

	jwtManager := jwt.NewJwtManager(cfg.Server.SecretKey, nil)

	handlerTransport := &handlers.HandlerTransport{
		StartSessionHandler:     handlers.NewStartSessionHandler(logger, conversationService),
		ListSessionsHandler:     handlers.NewListSessionsHandler(logger, conversationService),
		GetSessionHandler:       handlers.NewGetSessionHandler(logger, conversationService),
		CloseSessionHandler:     handlers.NewCloseSessionHandler(logger, conversationService),
		AddFeedbackHandler:      handlers.NewAddFeedbackHandler(logger, conversationService),
		SendMessageHandler:      handlers.NewSendMessageHandler(logger, conversationService),
		GetQuickRepliesHandler:  handlers.NewGetQuickRepliesHandler(logger, conversationService),
		GetServiceStatusHandler: handlers.NewGetServiceStatusHandler(logger, conversationService),
		ToggleAIHandler:         handlers.NewToggleAIHandler(logger, conversationService),
		GetVersionHandler:       handlers.NewGetVersionHandler(logger),
		HealthHandler:           handlers.NewHealthHandler(),
	}

	middlewareTransport := &middleware.Transport{
		AuthMiddleware:    middleware.NewAuthMiddleware(logger, jwtManager),
		AdminMiddleware:   middleware.NewRoleMiddleware(logger, conversation.RoleAdmin),
		MetricsMiddleware: middleware.NewMetricsMiddleware(logger, metricsWorker, nil),
		RecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
	}
	if len(cfg.Server.AllowOrigins) > 0 {
		middlewareTransport.CORSMiddleware = middleware.NewCORSGlobalMiddleware(cfg.Server.AllowOrigins, nil, false, nil, "600")
	}

	return &Container{
		Cache:               cacheInstance,
		SessionRepository:   sessionRepository,
		Limiter:             limiter,
		Generator:           generator,
		ConversationService: conversationService,
		Sweeper:             sweeper,
		MetricsWorker:       metricsWorker,
		JWTManager:          jwtManager,
		HandlerTransport:    handlerTransport,
		MiddlewareTransport: middlewareTransport,
	}, nil
}

func newSessionRepository(cfg *config.Config, db *database.DB, limits domainSession.Limits) (domainSession.Repository, error) {
	switch strings.ToLower(cfg.Assistant.SessionStore) {
	case config.StoreMemory, "":
		return repository.NewMemorySessionRepository(limits, nil), nil
	case config.StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("session store %q requires a database connection", cfg.Assistant.SessionStore)
		}
		return repository.NewSessionRepository(db.DB, limits), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Assistant.SessionStore)
	}
}

func newRateLimitStore(cfg *config.Config, c cache.Client) (ratelimit.Store, error) {
	switch strings.ToLower(cfg.RateLimit.Store) {
	case config.StoreMemory, "":
		return infraRatelimit.NewMemoryStore(), nil
	case config.StoreRedis:
		if c == nil {
			return nil, fmt.Errorf("rate limit store %q requires redis", cfg.RateLimit.Store)
		}
		return infraRatelimit.NewRedisStore(c.RedisClient(), nil), nil
	default:
		return nil, fmt.Errorf("unsupported rate limit store: %s", cfg.RateLimit.Store)
	}
}
