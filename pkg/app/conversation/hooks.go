package conversation

import (
	"context"
	"errors"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/metrics"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type RejectReason string

const (
	RejectValidation    RejectReason = "validation"
	RejectRateLimit     RejectReason = "rate_limit"
	RejectSessionLimit  RejectReason = "session_limit"
	RejectMessageLimit  RejectReason = "message_limit"
	RejectSessionClosed RejectReason = "session_closed"
	RejectExpired       RejectReason = "session_expired"
	RejectInternal      RejectReason = "internal"
)

func rejectReason(err error) RejectReason {
	switch {
	case errors.Is(err, domain.ErrTooManySessions):
		return RejectSessionLimit
	case errors.Is(err, domain.ErrMessageLimitReached):
		return RejectMessageLimit
	case errors.Is(err, domain.ErrSessionExpired):
		return RejectExpired
	case errors.Is(err, domain.ErrSessionClosed):
		return RejectSessionClosed
	default:
		return RejectInternal
	}
}

// Outcome is handed to hooks once a reply has been persisted.
type Outcome struct {
	ActorID    string
	SessionID  string
	NewSession bool
	Result     assistant.Result
}

// Hook is invoked by the service after the final result of each message.
type Hook interface {
	OnResult(ctx context.Context, outcome Outcome)
	OnRejected(ctx context.Context, actorID string, reason RejectReason, err error)
}

type NopHook struct{}

func (NopHook) OnResult(context.Context, Outcome)                        {}
func (NopHook) OnRejected(context.Context, string, RejectReason, error) {}

func (s *service) reject(ctx context.Context, actorID string, reason RejectReason, err error) {
	s.hook.OnRejected(ctx, actorID, reason, err)
}

// Hooks fans out to every hook in order.
type Hooks []Hook

func (h Hooks) OnResult(ctx context.Context, outcome Outcome) {
	for _, hook := range h {
		hook.OnResult(ctx, outcome)
	}
}

func (h Hooks) OnRejected(ctx context.Context, actorID string, reason RejectReason, err error) {
	for _, hook := range h {
		hook.OnRejected(ctx, actorID, reason, err)
	}
}

type loggingHook struct {
	logger *logrus.Logger
}

func NewLoggingHook(logger *logrus.Logger) Hook {
	return &loggingHook{logger: logger}
}

func (h *loggingHook) OnResult(_ context.Context, o Outcome) {
	fields := logrus.Fields{
		"actor_id":    o.ActorID,
		"session_id":  o.SessionID,
		"new_session": o.NewSession,
		"source":      o.Result.Source,
		"in_scope":    o.Result.Verdict.InScope,
	}
	if o.Result.Topic != "" {
		fields["topic"] = o.Result.Topic
	}
	if o.Result.Latency > 0 {
		fields["latency_ms"] = o.Result.Latency.Milliseconds()
	}
	if o.Result.ModelErr != nil {
		fields["model_error"] = o.Result.ModelErr.Error()
	}
	h.logger.WithFields(fields).Info("assistant reply")
}

func (h *loggingHook) OnRejected(_ context.Context, actorID string, reason RejectReason, err error) {
	h.logger.WithError(err).WithFields(logrus.Fields{
		"actor_id": actorID,
		"reason":   reason,
	}).Debug("message rejected")
}

type metricsHook struct {
	provider string
}

func NewMetricsHook(provider string) Hook {
	return &metricsHook{provider: provider}
}

func (h *metricsHook) OnResult(_ context.Context, o Outcome) {
	prometheus.MessagesTotal.WithLabelValues(string(o.Result.Source)).Inc()
	if !prometheus.Config.EnableModelLatency || o.Result.Latency <= 0 {
		return
	}
	outcome := "success"
	if o.Result.ModelErr != nil {
		outcome = "failure"
	}
	prometheus.ModelLatency.WithLabelValues(h.provider, outcome).Observe(float64(o.Result.Latency.Milliseconds()))
}

func (h *metricsHook) OnRejected(_ context.Context, _ string, reason RejectReason, _ error) {
	prometheus.RejectionsTotal.WithLabelValues(string(reason)).Inc()
}

type asyncHook struct {
	worker metrics.Worker
	next   Hook
}

// NewAsyncHook runs next on worker so hooks never delay a reply.
func NewAsyncHook(worker metrics.Worker, next Hook) Hook {
	return &asyncHook{worker: worker, next: next}
}

func (h *asyncHook) OnResult(ctx context.Context, o Outcome) {
	ctx = context.WithoutCancel(ctx)
	h.worker.Submit("conversation.result", func() { h.next.OnResult(ctx, o) })
}

func (h *asyncHook) OnRejected(ctx context.Context, actorID string, reason RejectReason, err error) {
	ctx = context.WithoutCancel(ctx)
	h.worker.Submit("conversation.rejected", func() { h.next.OnRejected(ctx, actorID, reason, err) })
}
