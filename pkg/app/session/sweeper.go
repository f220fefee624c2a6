package session

import (
	"context"
	"sync"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/ratelimit"
	domain "github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	TransitionExpired  = "expired"
	TransitionArchived = "archived"
)

type SweeperConfig struct {
	Interval     time.Duration
	ArchiveAfter time.Duration
}

// SweepResult reports one pass.
type SweepResult struct {
	Expired  int
	Archived int
	Pruned   int
}

type Sweeper interface {
	Start()
	Shutdown()
	Sweep(ctx context.Context) SweepResult
}

type sweeper struct {
	logger       *logrus.Logger
	repo         domain.Repository
	limiter      ratelimit.Limiter
	config       SweeperConfig
	timeProvider func() time.Time
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	once         sync.Once
}

type Opts struct {
	TimeProvider func() time.Time
}

// NewSweeper expires idle sessions, archives sessions inactive for longer than
// ArchiveAfter and prunes the rate-limit table. A zero ArchiveAfter disables
// archiving; limiter may be nil.
func NewSweeper(
	logger *logrus.Logger,
	repo domain.Repository,
	limiter ratelimit.Limiter,
	config SweeperConfig,
	opts *Opts,
) Sweeper {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &sweeper{
		logger:       logger,
		repo:         repo,
		limiter:      limiter,
		config:       config,
		timeProvider: timeProvider,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (s *sweeper) Start() {
	s.logger.WithField("interval", s.config.Interval.String()).Info("starting session sweeper")
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(s.ctx)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *sweeper) Shutdown() {
	s.once.Do(func() {
		s.logger.Info("shutting down session sweeper")
		s.cancel()
		s.wg.Wait()
		s.logger.Info("session sweeper stopped")
	})
}

func (s *sweeper) Sweep(ctx context.Context) SweepResult {
	var result SweepResult
	now := s.timeProvider()

	expired, err := s.repo.ExpireIdle(ctx, now)
	if err != nil {
		s.logger.WithError(err).Error("failed to expire idle sessions")
	} else if expired > 0 {
		result.Expired = expired
		prometheus.SessionsSweptTotal.WithLabelValues(TransitionExpired).Add(float64(expired))
	}

	if s.config.ArchiveAfter > 0 {
		archived, err := s.repo.ArchiveInactive(ctx, now.Add(-s.config.ArchiveAfter))
		if err != nil {
			s.logger.WithError(err).Error("failed to archive inactive sessions")
		} else if archived > 0 {
			result.Archived = archived
			prometheus.SessionsSweptTotal.WithLabelValues(TransitionArchived).Add(float64(archived))
		}
	}

	if s.limiter != nil {
		pruned, err := s.limiter.Prune(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("failed to prune rate limit records")
		}
		result.Pruned = pruned
	}

	if result.Expired > 0 || result.Archived > 0 || result.Pruned > 0 {
		s.logger.WithFields(logrus.Fields{
			"expired":  result.Expired,
			"archived": result.Archived,
			"pruned":   result.Pruned,
		}).Debug("session sweep completed")
	}
	return result
}
