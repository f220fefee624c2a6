package ratelimit

import (
	"context"
	"time"
)

// Policy is a sliding-window admission rule. BlockDuration applies once the
// window is full; while blocked every request is rejected.
type Policy struct {
	MaxPerWindow  int
	Window        time.Duration
	BlockDuration time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxPerWindow:  10,
		Window:        60 * time.Second,
		BlockDuration: 60 * time.Second,
	}
}

// Record is a point-in-time view of an actor's window.
type Record struct {
	ActorID      string
	Timestamps   []time.Time
	BlockedUntil time.Time
}

func (r *Record) Blocked(now time.Time) bool {
	return now.Before(r.BlockedUntil)
}

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

//go:generate mockery --name=Store --dir=. --output=./mocks --filename=store_mock.go --case=underscore
type Store interface {
	// Get returns the actor's live window or nil when the actor has none.
	Get(ctx context.Context, actorID string, now time.Time, window time.Duration) (*Record, error)
	// RecordAndCheck evaluates and, when admitted, records one request as a single
	// atomic step for the actor.
	RecordAndCheck(ctx context.Context, actorID string, now time.Time, policy Policy) (Decision, error)
	// Prune drops records whose window is empty and whose block has elapsed.
	Prune(ctx context.Context, now time.Time, window time.Duration) (int, error)
}
