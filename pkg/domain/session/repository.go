package session

import (
	"context"
	"time"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=session_repository_mock.go --case=underscore
type Repository interface {
	// Create opens a new active session for ownerID, rejecting with
	// ErrTooManySessions when the owner already holds the maximum.
	Create(ctx context.Context, ownerID string, sessionContext Context, initial *Message) (*Session, error)
	// FindActive returns the owner's most recent active session or ErrSessionNotFound.
	FindActive(ctx context.Context, ownerID string) (*Session, error)
	FindByID(ctx context.Context, sessionID, ownerID string) (*Session, error)
	// AppendMessages appends all messages and bumps LastActivity as one unit.
	AppendMessages(ctx context.Context, sessionID string, messages ...Message) (*Session, error)
	Close(ctx context.Context, sessionID, ownerID string) (*Session, error)
	AttachFeedback(ctx context.Context, sessionID, ownerID string, feedback Feedback) (*Session, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Summary, error)
	ExpireIdle(ctx context.Context, now time.Time) (int, error)
	ArchiveInactive(ctx context.Context, cutoff time.Time) (int, error)
}
