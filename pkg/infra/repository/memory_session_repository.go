package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *session.Session
}

// MemorySessionRepository keeps sessions in process memory. Appends lock only the
// target session; creation locks only the owner.
type MemorySessionRepository struct {
	mu           sync.RWMutex
	sessions     map[string]*sessionEntry
	byOwner      map[string][]string
	ownerLocks   sync.Map
	limits       session.Limits
	timeProvider func() time.Time
}

type MemorySessionRepositoryOpts struct {
	TimeProvider func() time.Time
}

func NewMemorySessionRepository(limits session.Limits, opts *MemorySessionRepositoryOpts) *MemorySessionRepository {
	timeProvider := time.Now
	if opts != nil && opts.TimeProvider != nil {
		timeProvider = opts.TimeProvider
	}
	return &MemorySessionRepository{
		sessions:     make(map[string]*sessionEntry),
		byOwner:      make(map[string][]string),
		limits:       limits,
		timeProvider: timeProvider,
	}
}

func (r *MemorySessionRepository) ownerLock(ownerID string) *sync.Mutex {
	v, _ := r.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	lock, _ := v.(*sync.Mutex)
	return lock
}

func (r *MemorySessionRepository) entry(sessionID string) (*sessionEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sessionID]
	return e, ok
}

func (r *MemorySessionRepository) ownerEntries(ownerID string) []*sessionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byOwner[ownerID]
	entries := make([]*sessionEntry, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.sessions[id]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// expireIfIdle must be called with e.mu held.
func (r *MemorySessionRepository) expireIfIdle(e *sessionEntry, now time.Time) bool {
	if !e.session.IsIdle(now, r.limits.IdleTimeout) {
		return false
	}
	e.session.Status = session.StatusExpired
	ended := now
	e.session.EndedAt = &ended
	return true
}

func (r *MemorySessionRepository) Create(
	ctx context.Context,
	ownerID string,
	sessionContext session.Context,
	initial *session.Message,
) (*session.Session, error) {
	lock := r.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	now := r.timeProvider()
	active := 0
	for _, e := range r.ownerEntries(ownerID) {
		e.mu.Lock()
		r.expireIfIdle(e, now)
		if e.session.Status == session.StatusActive {
			active++
		}
		e.mu.Unlock()
	}
	if r.limits.MaxActivePerOwner > 0 && active >= r.limits.MaxActivePerOwner {
		return nil, domain.ErrTooManySessions
	}

	s := session.NewSession(ownerID, sessionContext, now)
	if initial != nil {
		s.Messages = append(s.Messages, initial.Clone())
	}

	r.mu.Lock()
	r.sessions[s.ID] = &sessionEntry{session: s}
	r.byOwner[ownerID] = append(r.byOwner[ownerID], s.ID)
	r.mu.Unlock()

	return s.Clone(), nil
}

func (r *MemorySessionRepository) FindActive(ctx context.Context, ownerID string) (*session.Session, error) {
	now := r.timeProvider()
	var latest *session.Session
	for _, e := range r.ownerEntries(ownerID) {
		e.mu.Lock()
		r.expireIfIdle(e, now)
		if e.session.Status == session.StatusActive {
			if latest == nil || e.session.LastActivity.After(latest.LastActivity) {
				latest = e.session.Clone()
			}
		}
		e.mu.Unlock()
	}
	if latest == nil {
		return nil, domain.ErrSessionNotFound
	}
	return latest, nil
}

func (r *MemorySessionRepository) FindByID(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	e, ok := r.entry(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.OwnerID != ownerID {
		return nil, domain.ErrSessionNotFound
	}
	r.expireIfIdle(e, r.timeProvider())
	return e.session.Clone(), nil
}

func (r *MemorySessionRepository) AppendMessages(
	ctx context.Context,
	sessionID string,
	messages ...session.Message,
) (*session.Session, error) {
	e, ok := r.entry(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := r.timeProvider()
	r.expireIfIdle(e, now)
	if e.session.Status.IsTerminal() {
		return nil, session.TerminalError(e.session.Status)
	}
	if r.limits.MaxMessages > 0 && len(e.session.Messages)+len(messages) > r.limits.MaxMessages {
		return nil, domain.ErrMessageLimitReached
	}
	for _, m := range messages {
		e.session.Messages = append(e.session.Messages, m.Clone())
	}
	e.session.LastActivity = now
	return e.session.Clone(), nil
}

func (r *MemorySessionRepository) Close(ctx context.Context, sessionID, ownerID string) (*session.Session, error) {
	e, ok := r.entry(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.OwnerID != ownerID {
		return nil, domain.ErrSessionNotFound
	}
	now := r.timeProvider()
	r.expireIfIdle(e, now)
	switch e.session.Status {
	case session.StatusClosed:
		return e.session.Clone(), nil
	case session.StatusActive:
		e.session.Status = session.StatusClosed
		ended := now
		e.session.EndedAt = &ended
		return e.session.Clone(), nil
	default:
		return nil, session.TerminalError(e.session.Status)
	}
}

func (r *MemorySessionRepository) AttachFeedback(
	ctx context.Context,
	sessionID, ownerID string,
	feedback session.Feedback,
) (*session.Session, error) {
	e, ok := r.entry(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.OwnerID != ownerID {
		return nil, domain.ErrSessionNotFound
	}
	fb := feedback
	e.session.Feedback = &fb
	return e.session.Clone(), nil
}

func (r *MemorySessionRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]session.Summary, error) {
	now := r.timeProvider()
	entries := r.ownerEntries(ownerID)
	summaries := make([]session.Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		r.expireIfIdle(e, now)
		summaries = append(summaries, e.session.Summary())
		e.mu.Unlock()
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (r *MemorySessionRepository) all() []*sessionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*sessionEntry, 0, len(r.sessions))
	for _, e := range r.sessions {
		entries = append(entries, e)
	}
	return entries
}

func (r *MemorySessionRepository) ExpireIdle(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	for _, e := range r.all() {
		e.mu.Lock()
		if r.expireIfIdle(e, now) {
			expired++
		}
		e.mu.Unlock()
	}
	return expired, nil
}

func (r *MemorySessionRepository) ArchiveInactive(ctx context.Context, cutoff time.Time) (int, error) {
	archived := 0
	for _, e := range r.all() {
		e.mu.Lock()
		if e.session.Status != session.StatusArchived && e.session.LastActivity.Before(cutoff) {
			if e.session.EndedAt == nil {
				ended := r.timeProvider()
				e.session.EndedAt = &ended
			}
			e.session.Status = session.StatusArchived
			archived++
		}
		e.mu.Unlock()
	}
	return archived, nil
}
