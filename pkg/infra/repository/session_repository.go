package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRecord struct {
	ID                  string     `gorm:"type:uuid;primaryKey"`
	OwnerID             string     `gorm:"type:text;not null;index"`
	Status              string     `gorm:"type:varchar(16);not null;index"`
	UserType            string     `gorm:"type:text"`
	Department          string     `gorm:"type:text"`
	Location            string     `gorm:"type:text"`
	MessageCount        int        `gorm:"not null;default:0"`
	StartedAt           time.Time  `gorm:"not null"`
	LastActivity        time.Time  `gorm:"not null;index"`
	EndedAt             *time.Time
	FeedbackRating      *int
	FeedbackComment     string `gorm:"type:text"`
	FeedbackSubmittedAt *time.Time
	Messages            []messageRecord `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (sessionRecord) TableName() string {
	return "chat_sessions"
}

type messageRecord struct {
	ID        string              `gorm:"type:uuid;primaryKey"`
	SessionID string              `gorm:"type:uuid;not null;index"`
	Seq       int                 `gorm:"not null"`
	Content   string              `gorm:"type:text;not null"`
	Sender    string              `gorm:"type:varchar(16);not null"`
	Metadata  domain.MetadataJSON `gorm:"type:jsonb"`
	CreatedAt time.Time           `gorm:"not null"`
}

func (messageRecord) TableName() string {
	return "chat_messages"
}

type sessionRepository struct {
	db           *gorm.DB
	limits       session.Limits
	timeProvider func() time.Time
}

func NewSessionRepository(db *gorm.DB, limits session.Limits) session.Repository {
	return &sessionRepository{
		db:           db,
		limits:       limits,
		timeProvider: time.Now,
	}
}

func (r *sessionRepository) idleCutoff(now time.Time) (time.Time, bool) {
	if r.limits.IdleTimeout <= 0 {
		return time.Time{}, false
	}
	return now.Add(-r.limits.IdleTimeout), true
}

func (r *sessionRepository) expireOwnerIdle(tx *gorm.DB, ownerID string, now time.Time) error {
	cutoff, ok := r.idleCutoff(now)
	if !ok {
		return nil
	}
	return tx.Model(&sessionRecord{}).
		Where("owner_id = ? AND status = ? AND last_activity < ?", ownerID, session.StatusActive, cutoff).
		Updates(map[string]any{"status": session.StatusExpired, "ended_at": now}).Error
}

func (r *sessionRepository) Create(
	ctx context.Context,
	ownerID string,
	sessionContext session.Context,
	initial *session.Message,
) (*session.Session, error) {
	now := r.timeProvider()
	s := session.NewSession(ownerID, sessionContext, now)
	if initial != nil {
		s.Messages = append(s.Messages, initial.Clone())
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serializes creation per owner so the active-session count cannot race.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", ownerID).Error; err != nil {
			return err
		}
		if err := r.expireOwnerIdle(tx, ownerID, now); err != nil {
			return err
		}
		var active int64
		if err := tx.Model(&sessionRecord{}).
			Where("owner_id = ? AND status = ?", ownerID, session.StatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if r.limits.MaxActivePerOwner > 0 && active >= int64(r.limits.MaxActivePerOwner) {
			return domain.ErrTooManySessions
		}
		rec := toSessionRecord(s)
		return tx.Create(&rec).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrTooManySessions) {
			return nil, err
		}
		return nil, domain.NewPersistenceError("create session", err)
	}
	return s, nil
}

func (r *sessionRepository) FindActive(ctx context.Context, ownerID string) (*session.Session, error) {
	now := r.timeProvider()
	db := r.db.WithContext(ctx)
	if err := r.expireOwnerIdle(db, ownerID, now); err != nil {
		return nil, domain.NewPersistenceError("expire idle sessions", err)
	}
	var rec sessionRecord
	err := db.Preload("Messages", orderBySeq).
		Where("owner_id = ? AND status = ?", ownerID, session.StatusActive).
		Order("last_activity DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.NewPersistenceError("find active session", err)
	}
	return fromSessionRecord(&rec), nil
}

func (r *sessionRepository) FindByID(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	now := r.timeProvider()
	db := r.db.WithContext(ctx)
	if err := r.expireOwnerIdle(db, ownerID, now); err != nil {
		return nil, domain.NewPersistenceError("expire idle sessions", err)
	}
	var rec sessionRecord
	err := db.Preload("Messages", orderBySeq).
		Where("id = ? AND owner_id = ?", sessionID, ownerID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.NewPersistenceError("find session", err)
	}
	return fromSessionRecord(&rec), nil
}

func (r *sessionRepository) AppendMessages(
	ctx context.Context,
	sessionID string,
	messages ...session.Message,
) (*session.Session, error) {
	now := r.timeProvider()
	var rejected error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec sessionRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sessionID).
			First(&rec).Error; err != nil {
			return err
		}
		status := session.Status(rec.Status)
		if status == session.StatusActive {
			if cutoff, ok := r.idleCutoff(now); ok && rec.LastActivity.Before(cutoff) {
				// The expiry must commit even though the append is rejected.
				rejected = session.TerminalError(session.StatusExpired)
				return tx.Model(&sessionRecord{}).Where("id = ?", sessionID).
					Updates(map[string]any{"status": session.StatusExpired, "ended_at": now}).Error
			}
		}
		if status.IsTerminal() {
			rejected = session.TerminalError(status)
			return nil
		}
		if r.limits.MaxMessages > 0 && rec.MessageCount+len(messages) > r.limits.MaxMessages {
			rejected = domain.ErrMessageLimitReached
			return nil
		}
		rows := make([]messageRecord, 0, len(messages))
		for i, m := range messages {
			rows = append(rows, toMessageRecord(sessionID, rec.MessageCount+i+1, m))
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return tx.Model(&sessionRecord{}).Where("id = ?", sessionID).
			Updates(map[string]any{
				"message_count": rec.MessageCount + len(messages),
				"last_activity": now,
			}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.NewPersistenceError("append messages", err)
	}
	if rejected != nil {
		return nil, rejected
	}
	return r.load(ctx, sessionID)
}

func (r *sessionRepository) Close(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	s, err := r.FindByID(ctx, sessionID, ownerID)
	if err != nil {
		return nil, err
	}
	switch s.Status {
	case session.StatusClosed:
		return s, nil
	case session.StatusActive:
	default:
		return nil, session.TerminalError(s.Status)
	}
	now := r.timeProvider()
	res := r.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("id = ? AND owner_id = ? AND status = ?", sessionID, ownerID, session.StatusActive).
		Updates(map[string]any{"status": session.StatusClosed, "ended_at": now})
	if res.Error != nil {
		return nil, domain.NewPersistenceError("close session", res.Error)
	}
	return r.load(ctx, sessionID)
}

func (r *sessionRepository) AttachFeedback(
	ctx context.Context,
	sessionID, ownerID string,
	feedback session.Feedback,
) (*session.Session, error) {
	rating := feedback.Rating
	submittedAt := feedback.SubmittedAt
	res := r.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("id = ? AND owner_id = ?", sessionID, ownerID).
		Updates(map[string]any{
			"feedback_rating":       &rating,
			"feedback_comment":      feedback.Comment,
			"feedback_submitted_at": &submittedAt,
		})
	if res.Error != nil {
		return nil, domain.NewPersistenceError("attach feedback", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return r.load(ctx, sessionID)
}

func (r *sessionRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]session.Summary, error) {
	db := r.db.WithContext(ctx)
	if err := r.expireOwnerIdle(db, ownerID, r.timeProvider()); err != nil {
		return nil, domain.NewPersistenceError("expire idle sessions", err)
	}
	var recs []sessionRecord
	q := db.Where("owner_id = ?", ownerID).Order("last_activity DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, domain.NewPersistenceError("list sessions", err)
	}

	summaries := make([]session.Summary, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		summary := session.Summary{
			ID:           rec.ID,
			Status:       session.Status(rec.Status),
			StartedAt:    rec.StartedAt,
			LastActivity: rec.LastActivity,
			EndedAt:      rec.EndedAt,
			MessageCount: rec.MessageCount,
			HasFeedback:  rec.FeedbackRating != nil,
		}
		var last messageRecord
		err := db.Where("session_id = ?", rec.ID).Order("seq DESC").Limit(1).Find(&last).Error
		if err != nil {
			return nil, domain.NewPersistenceError("list sessions", err)
		}
		if last.ID != "" {
			summary.LastMessage = session.Preview(last.Content, 80)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (r *sessionRepository) ExpireIdle(ctx context.Context, now time.Time) (int, error) {
	cutoff, ok := r.idleCutoff(now)
	if !ok {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("status = ? AND last_activity < ?", session.StatusActive, cutoff).
		Updates(map[string]any{"status": session.StatusExpired, "ended_at": now})
	if res.Error != nil {
		return 0, domain.NewPersistenceError("expire idle sessions", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *sessionRepository) ArchiveInactive(ctx context.Context, cutoff time.Time) (int, error) {
	res := r.db.WithContext(ctx).Model(&sessionRecord{}).
		Where("status <> ? AND last_activity < ?", session.StatusArchived, cutoff).
		Updates(map[string]any{
			"status":   session.StatusArchived,
			"ended_at": gorm.Expr("COALESCE(ended_at, ?)", r.timeProvider()),
		})
	if res.Error != nil {
		return 0, domain.NewPersistenceError("archive sessions", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *sessionRepository) load(ctx context.Context, sessionID string) (*session.Session, error) {
	var rec sessionRecord
	err := r.db.WithContext(ctx).Preload("Messages", orderBySeq).
		Where("id = ?", sessionID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.NewPersistenceError("load session", err)
	}
	return fromSessionRecord(&rec), nil
}

func orderBySeq(db *gorm.DB) *gorm.DB {
	return db.Order("seq ASC")
}

func toSessionRecord(s *session.Session) sessionRecord {
	rec := sessionRecord{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Status:       string(s.Status),
		UserType:     s.Context.UserType,
		Department:   s.Context.Department,
		Location:     s.Context.Location,
		MessageCount: len(s.Messages),
		StartedAt:    s.StartedAt,
		LastActivity: s.LastActivity,
		EndedAt:      s.EndedAt,
	}
	for i, m := range s.Messages {
		rec.Messages = append(rec.Messages, toMessageRecord(s.ID, i+1, m))
	}
	if s.Feedback != nil {
		rating := s.Feedback.Rating
		submittedAt := s.Feedback.SubmittedAt
		rec.FeedbackRating = &rating
		rec.FeedbackComment = s.Feedback.Comment
		rec.FeedbackSubmittedAt = &submittedAt
	}
	return rec
}

func toMessageRecord(sessionID string, seq int, m session.Message) messageRecord {
	return messageRecord{
		ID:        m.ID,
		SessionID: sessionID,
		Seq:       seq,
		Content:   m.Content,
		Sender:    string(m.Sender),
		Metadata:  domain.MetadataJSON(m.Metadata),
		CreatedAt: m.Timestamp,
	}
}

func fromSessionRecord(rec *sessionRecord) *session.Session {
	s := &session.Session{
		ID:           rec.ID,
		OwnerID:      rec.OwnerID,
		Status:       session.Status(rec.Status),
		Messages:     make([]session.Message, 0, len(rec.Messages)),
		StartedAt:    rec.StartedAt,
		LastActivity: rec.LastActivity,
		EndedAt:      rec.EndedAt,
		Context: session.Context{
			UserType:   rec.UserType,
			Department: rec.Department,
			Location:   rec.Location,
		},
	}
	for _, m := range rec.Messages {
		s.Messages = append(s.Messages, session.Message{
			ID:        m.ID,
			Content:   m.Content,
			Sender:    session.Sender(m.Sender),
			Timestamp: m.CreatedAt,
			Metadata:  map[string]any(m.Metadata),
		})
	}
	if rec.FeedbackRating != nil {
		fb := session.Feedback{Rating: *rec.FeedbackRating, Comment: rec.FeedbackComment}
		if rec.FeedbackSubmittedAt != nil {
			fb.SubmittedAt = *rec.FeedbackSubmittedAt
		}
		s.Feedback = &fb
	}
	return s
}
