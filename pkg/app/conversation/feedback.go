package conversation

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
)

const (
	minRating = 1
	maxRating = 5
)

func (s *service) AddFeedback(
	ctx context.Context,
	actorID, sessionID string,
	rating int,
	comment string,
) (*session.Session, error) {
	if sessionID == "" {
		return nil, domain.NewValidationError("session_id", domain.RuleRequired, "session_id es obligatorio")
	}
	if rating < minRating || rating > maxRating {
		return nil, domain.NewValidationError("rating", domain.RuleRatingOutOfRange,
			fmt.Sprintf("La calificación debe estar entre %d y %d", minRating, maxRating))
	}
	cleaned := s.sanitizer.Clean(comment)
	if utf8.RuneCountInString(cleaned) > s.config.MaxCommentLength {
		return nil, domain.NewValidationError("comment", domain.RuleTooLong,
			fmt.Sprintf("El comentario no puede superar %d caracteres", s.config.MaxCommentLength))
	}

	return s.repo.AttachFeedback(ctx, sessionID, actorID, session.Feedback{
		Rating:      rating,
		Comment:     cleaned,
		SubmittedAt: s.timeProvider(),
	})
}
