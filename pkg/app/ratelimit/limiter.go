package ratelimit

import (
	"context"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=Limiter --dir=. --output=./mocks --filename=limiter_mock.go --case=underscore
type Limiter interface {
	// Allow admits one request for actorID or returns a
	// *domain.RateLimitExceededError.
	Allow(ctx context.Context, actorID string) error
	Status(ctx context.Context, actorID string) (*ratelimit.Record, error)
	Prune(ctx context.Context) (int, error)
}

type limiter struct {
	logger       *logrus.Logger
	store        ratelimit.Store
	policy       ratelimit.Policy
	timeProvider func() time.Time
}

type Opts struct {
	TimeProvider func() time.Time
}

func NewLimiter(logger *logrus.Logger, store ratelimit.Store, policy ratelimit.Policy, opts *Opts) Limiter {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &limiter{
		logger:       logger,
		store:        store,
		policy:       policy,
		timeProvider: timeProvider,
	}
}

func (l *limiter) Allow(ctx context.Context, actorID string) error {
	decision, err := l.store.RecordAndCheck(ctx, actorID, l.timeProvider(), l.policy)
	if err != nil {
		// Fails open on store errors.
		l.logger.WithError(err).WithField("actor_id", actorID).Warn("rate limit store unavailable, admitting request")
		return nil
	}
	if decision.Allowed {
		return nil
	}
	retry := decision.RetryAfter
	if retry <= 0 {
		retry = time.Second
	}
	l.logger.WithFields(logrus.Fields{
		"actor_id":    actorID,
		"retry_after": retry.String(),
	}).Debug("rate limit exceeded")
	return &domain.RateLimitExceededError{RetryAfter: retry}
}

func (l *limiter) Status(ctx context.Context, actorID string) (*ratelimit.Record, error) {
	return l.store.Get(ctx, actorID, l.timeProvider(), l.policy.Window)
}

func (l *limiter) Prune(ctx context.Context) (int, error) {
	return l.store.Prune(ctx, l.timeProvider(), l.policy.Window)
}
