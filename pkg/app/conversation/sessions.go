package conversation

import (
	"context"
	"errors"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/user"
)

func (s *service) StartSession(ctx context.Context, actorID string, forceNew bool) (*StartResponse, error) {
	if !forceNew {
		sess, err := s.repo.FindActive(ctx, actorID)
		if err == nil {
			return &StartResponse{Session: sess, IsExisting: true}, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
	}
	sess, err := s.createSession(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return &StartResponse{Session: sess}, nil
}

// createSession never fails because of the directory; an unknown or
// unreachable profile yields an empty context.
func (s *service) createSession(ctx context.Context, actorID string) (*session.Session, error) {
	profile := s.lookupProfile(ctx, actorID)
	sessionContext := profile.SessionContext()
	welcome := session.NewMessage(
		WelcomeMessage(profile.FirstName(), sessionContext.UserType),
		session.SenderAssistant,
		map[string]any{"type": "welcome"},
		s.timeProvider(),
	)
	sess, err := s.repo.Create(ctx, actorID, sessionContext, &welcome)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("actor_id", actorID).WithField("session_id", sess.ID).Debug("session created")
	return sess, nil
}

func (s *service) lookupProfile(ctx context.Context, actorID string) *user.Profile {
	if s.profiles == nil {
		return nil
	}
	profile, err := s.profiles.Find(ctx, actorID)
	if err != nil {
		s.logger.WithError(err).WithField("actor_id", actorID).Warn("user directory lookup failed, using default context")
		return nil
	}
	return profile
}

func (s *service) ListSessions(ctx context.Context, actorID string, limit int) ([]session.Summary, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	return s.repo.ListByOwner(ctx, actorID, limit)
}

func (s *service) GetSessionDetails(ctx context.Context, actorID, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", domain.RuleRequired, "session_id es obligatorio")
	}
	return s.repo.FindByID(ctx, sessionID, actorID)
}

func (s *service) CloseSession(ctx context.Context, actorID, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", domain.RuleRequired, "session_id es obligatorio")
	}
	sess, err := s.repo.Close(ctx, sessionID, actorID)
	if err != nil {
		return nil, err
	}
	s.logger.WithField("actor_id", actorID).WithField("session_id", sessionID).Debug("session closed")
	return sess, nil
}
