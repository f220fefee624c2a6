package session

import (
	"fmt"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
	StatusExpired  Status = "expired"
	StatusArchived Status = "archived"
)

// IsTerminal reports whether the status rejects message appends.
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

// Context is captured from the user directory when the session is created.
type Context struct {
	UserType   string `json:"user_type"`
	Department string `json:"department"`
	Location   string `json:"location"`
}

type Feedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Session struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Status       Status     `json:"status"`
	Messages     []Message  `json:"messages"`
	StartedAt    time.Time  `json:"started_at"`
	LastActivity time.Time  `json:"last_activity"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Context      Context    `json:"context"`
	Feedback     *Feedback  `json:"feedback,omitempty"`
}

type Summary struct {
	ID           string     `json:"id"`
	Status       Status     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	LastActivity time.Time  `json:"last_activity"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	MessageCount int        `json:"message_count"`
	LastMessage  string     `json:"last_message,omitempty"`
	HasFeedback  bool       `json:"has_feedback"`
}

// Limits bounds what a repository accepts for a single owner and session.
type Limits struct {
	MaxActivePerOwner int
	MaxMessages       int
	IdleTimeout       time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxActivePerOwner: 3,
		MaxMessages:       100,
		IdleTimeout:       30 * time.Minute,
	}
}

func NewSession(ownerID string, sessionContext Context, now time.Time) *Session {
	return &Session{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Status:       StatusActive,
		Messages:     make([]Message, 0),
		StartedAt:    now,
		LastActivity: now,
		Context:      sessionContext,
	}
}

// IsIdle reports whether an active session has gone without activity for longer
// than timeout. A zero timeout disables expiry.
func (s *Session) IsIdle(now time.Time, timeout time.Duration) bool {
	if s.Status != StatusActive || timeout <= 0 {
		return false
	}
	return now.Sub(s.LastActivity) > timeout
}

// RecentMessages returns at most k of the latest messages, oldest first.
func (s *Session) RecentMessages(k int) []Message {
	if k <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= k {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-k:]
}

func (s *Session) Summary() Summary {
	summary := Summary{
		ID:           s.ID,
		Status:       s.Status,
		StartedAt:    s.StartedAt,
		LastActivity: s.LastActivity,
		EndedAt:      s.EndedAt,
		MessageCount: len(s.Messages),
		HasFeedback:  s.Feedback != nil,
	}
	if n := len(s.Messages); n > 0 {
		summary.LastMessage = Preview(s.Messages[n-1].Content, 80)
	}
	return summary
}

// Clone returns a deep copy so callers never share message slices with a store.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = m.Clone()
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	if s.Feedback != nil {
		fb := *s.Feedback
		c.Feedback = &fb
	}
	return &c
}

// TerminalError returns the append error for a session in status. Expired and
// archived sessions match both ErrSessionClosed and ErrSessionExpired.
func TerminalError(status Status) error {
	switch status {
	case StatusExpired, StatusArchived:
		return fmt.Errorf("%w: %w", domain.ErrSessionClosed, domain.ErrSessionExpired)
	default:
		return domain.ErrSessionClosed
	}
}

func Preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
