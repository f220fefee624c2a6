package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/sirupsen/logrus"
)

var errForbidden = fmt.Errorf("toggle ai responses: %w", domain.ErrForbidden)

func (s *service) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	receivedAt := s.timeProvider()

	text, err := s.sanitizer.Sanitize(req.Text)
	if err != nil {
		s.reject(ctx, req.ActorID, RejectValidation, err)
		return nil, err
	}
	if err := s.limiter.Allow(ctx, req.ActorID); err != nil {
		s.reject(ctx, req.ActorID, RejectRateLimit, err)
		return nil, err
	}

	sess, created, err := s.resolveSession(ctx, req.ActorID, req.SessionID)
	if err != nil {
		s.reject(ctx, req.ActorID, rejectReason(err), err)
		return nil, err
	}
	if s.config.MaxMessages > 0 && len(sess.Messages)+2 > s.config.MaxMessages {
		s.reject(ctx, req.ActorID, RejectMessageLimit, domain.ErrMessageLimitReached)
		return nil, domain.ErrMessageLimitReached
	}

	result := s.generator.Generate(ctx, assistant.Request{
		Text:    text,
		Context: sess.Context,
		History: sess.RecentMessages(s.config.HistorySize),
	})

	userMsg := session.NewMessage(text, session.SenderUser, req.Metadata, receivedAt)
	replyMsg := session.NewMessage(result.Text, session.SenderAssistant, replyMetadata(result), s.timeProvider())

	updated, err := s.repo.AppendMessages(ctx, sess.ID, userMsg, replyMsg)
	if err != nil {
		s.logAppendFailure(req.ActorID, sess.ID, err)
		s.reject(ctx, req.ActorID, rejectReason(err), err)
		return nil, err
	}

	s.hook.OnResult(ctx, Outcome{
		ActorID:    req.ActorID,
		SessionID:  updated.ID,
		NewSession: created,
		Result:     result,
	})

	return &SendResponse{
		SessionID:    updated.ID,
		Response:     result.Text,
		Source:       result.Source,
		Topic:        result.Topic,
		NewSession:   created,
		MessageCount: len(updated.Messages),
		Timestamp:    replyMsg.Timestamp,
	}, nil
}

// resolveSession picks the explicit session when it is owned and active, then
// the most recent active session, then creates one.
func (s *service) resolveSession(ctx context.Context, actorID, sessionID string) (*session.Session, bool, error) {
	if sessionID != "" {
		sess, err := s.repo.FindByID(ctx, sessionID, actorID)
		switch {
		case err == nil:
			switch sess.Status {
			case session.StatusActive:
				return sess, false, nil
			case session.StatusClosed:
				return nil, false, domain.ErrSessionClosed
			default:
				return nil, false, domain.ErrSessionExpired
			}
		case !errors.Is(err, domain.ErrSessionNotFound):
			return nil, false, err
		}
	}

	v, err, _ := s.resolving.Do(actorID, func() (interface{}, error) {
		sess, err := s.repo.FindActive(ctx, actorID)
		if err == nil {
			return resolved{session: sess}, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		sess, err = s.createSession(ctx, actorID)
		if err != nil {
			return nil, err
		}
		return resolved{session: sess, created: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	r := v.(resolved)
	return r.session, r.created, nil
}

type resolved struct {
	session *session.Session
	created bool
}

func (s *service) logAppendFailure(actorID, sessionID string, err error) {
	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"actor_id":   actorID,
		"session_id": sessionID,
	})
	var persistenceErr *domain.PersistenceError
	if errors.As(err, &persistenceErr) {
		entry.Error("failed to persist message pair")
		return
	}
	entry.Debug("message pair rejected")
}

func replyMetadata(result assistant.Result) map[string]any {
	md := map[string]any{"source": string(result.Source)}
	if result.Topic != "" {
		md["topic"] = result.Topic
	}
	if result.Model != "" {
		md["model"] = result.Model
	}
	if result.TokenCount > 0 {
		md["tokens"] = result.TokenCount
	}
	if result.Latency > 0 {
		md["latency_ms"] = result.Latency.Milliseconds()
	}
	if result.ModelErr != nil {
		md["fallback_reason"] = "model_error"
	}
	return md
}
