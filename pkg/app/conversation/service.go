package conversation

import (
	"context"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/knowledge"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/ratelimit"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/sanitizer"
	appuser "github.com/AgroMunicipal/CitizenAssistant/pkg/app/user"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 50

	RoleAdmin = "admin"
)

type Config struct {
	HistorySize      int
	MaxMessages      int
	MaxCommentLength int
}

func DefaultConfig() Config {
	return Config{
		HistorySize:      5,
		MaxMessages:      session.DefaultLimits().MaxMessages,
		MaxCommentLength: 500,
	}
}

// Actor is the authenticated caller.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin
}

type SendRequest struct {
	ActorID   string
	Text      string
	SessionID string
	Metadata  map[string]any
}

type SendResponse struct {
	SessionID    string           `json:"session_id"`
	Response     string           `json:"response"`
	Source       assistant.Source `json:"source"`
	Topic        string           `json:"topic,omitempty"`
	NewSession   bool             `json:"new_session"`
	MessageCount int              `json:"message_count"`
	Timestamp    time.Time        `json:"timestamp"`
}

type StartResponse struct {
	Session    *session.Session `json:"session"`
	IsExisting bool             `json:"is_existing"`
}

//go:generate mockery --name=Service --dir=. --output=./mocks --filename=conversation_service_mock.go --case=underscore
type Service interface {
	SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error)
	StartSession(ctx context.Context, actorID string, forceNew bool) (*StartResponse, error)
	ListSessions(ctx context.Context, actorID string, limit int) ([]session.Summary, error)
	GetSessionDetails(ctx context.Context, actorID, sessionID string) (*session.Session, error)
	CloseSession(ctx context.Context, actorID, sessionID string) (*session.Session, error)
	AddFeedback(ctx context.Context, actorID, sessionID string, rating int, comment string) (*session.Session, error)
	GetQuickReplies(userType string) []string
	GetServiceStatus(ctx context.Context) assistant.ServiceStatus
	// ToggleAIResponses returns the previous value. Only privileged actors may
	// change it.
	ToggleAIResponses(ctx context.Context, actor Actor, enabled bool) (bool, error)
}

type service struct {
	logger       *logrus.Logger
	config       Config
	repo         session.Repository
	profiles     appuser.Finder
	sanitizer    sanitizer.Sanitizer
	limiter      ratelimit.Limiter
	generator    assistant.Generator
	responder    knowledge.Responder
	hook         Hook
	timeProvider func() time.Time
	// resolving serializes find-or-create of the implicit session per actor.
	resolving    singleflight.Group
}

type Opts struct {
	TimeProvider func() time.Time
}

func NewService(
	logger *logrus.Logger,
	config Config,
	repo session.Repository,
	profiles appuser.Finder,
	sanitizer sanitizer.Sanitizer,
	limiter ratelimit.Limiter,
	generator assistant.Generator,
	responder knowledge.Responder,
	hook Hook,
	opts *Opts,
) Service {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultConfig().HistorySize
	}
	if config.MaxCommentLength <= 0 {
		config.MaxCommentLength = DefaultConfig().MaxCommentLength
	}
	if hook == nil {
		hook = NopHook{}
	}
	return &service{
		logger:       logger,
		config:       config,
		repo:         repo,
		profiles:     profiles,
		sanitizer:    sanitizer,
		limiter:      limiter,
		generator:    generator,
		responder:    responder,
		hook:         hook,
		timeProvider: timeProvider,
	}
}

func (s *service) GetQuickReplies(userType string) []string {
	return s.responder.QuickReplies(userType)
}

func (s *service) GetServiceStatus(ctx context.Context) assistant.ServiceStatus {
	return s.generator.Status(ctx)
}

func (s *service) ToggleAIResponses(ctx context.Context, actor Actor, enabled bool) (bool, error) {
	if !actor.Privileged() {
		return false, errForbidden
	}
	previous := s.generator.Settings().SetAIEnabled(enabled)
	s.logger.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"enabled":  enabled,
		"previous": previous,
	}).Info("ai responses toggled")
	return previous, nil
}
