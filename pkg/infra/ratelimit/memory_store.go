package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/ratelimit"
)

type actorWindow struct {
	mu           sync.Mutex
	timestamps   []time.Time
	blockedUntil time.Time
	removed      bool
}

// evict must be called with w.mu held.
func (w *actorWindow) evict(now time.Time, window time.Duration) {
	keep := 0
	for _, ts := range w.timestamps {
		if now.Sub(ts) < window {
			w.timestamps[keep] = ts
			keep++
		}
	}
	w.timestamps = w.timestamps[:keep]
}

// MemoryStore is a single-process store. Each actor has its own lock.
type MemoryStore struct {
	mu      sync.RWMutex
	windows map[string]*actorWindow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*actorWindow)}
}

func (s *MemoryStore) lookup(actorID string, create bool) *actorWindow {
	s.mu.RLock()
	w, ok := s.windows[actorID]
	s.mu.RUnlock()
	if ok || !create {
		return w
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok = s.windows[actorID]; ok {
		return w
	}
	w = &actorWindow{}
	s.windows[actorID] = w
	return w
}

func (s *MemoryStore) Get(_ context.Context, actorID string, now time.Time, window time.Duration) (*ratelimit.Record, error) {
	w := s.lookup(actorID, false)
	if w == nil {
		return nil, nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.removed {
		return nil, nil
	}
	w.evict(now, window)
	return &ratelimit.Record{
		ActorID:      actorID,
		Timestamps:   append([]time.Time(nil), w.timestamps...),
		BlockedUntil: w.blockedUntil,
	}, nil
}

func (s *MemoryStore) RecordAndCheck(
	_ context.Context,
	actorID string,
	now time.Time,
	policy ratelimit.Policy,
) (ratelimit.Decision, error) {
	for {
		w := s.lookup(actorID, true)
		w.mu.Lock()
		if w.removed {
			// Pruned between lookup and lock.
			w.mu.Unlock()
			continue
		}
		decision := decide(w, now, policy)
		w.mu.Unlock()
		return decision, nil
	}
}

// decide must be called with w.mu held.
func decide(w *actorWindow, now time.Time, policy ratelimit.Policy) ratelimit.Decision {
	if policy.MaxPerWindow <= 0 {
		return ratelimit.Decision{Allowed: true}
	}
	if now.Before(w.blockedUntil) {
		return ratelimit.Decision{RetryAfter: w.blockedUntil.Sub(now)}
	}
	w.evict(now, policy.Window)
	if len(w.timestamps) >= policy.MaxPerWindow {
		var retry time.Duration
		if policy.BlockDuration > 0 {
			w.blockedUntil = now.Add(policy.BlockDuration)
			retry = policy.BlockDuration
		} else {
			retry = w.timestamps[0].Add(policy.Window).Sub(now)
		}
		if retry <= 0 {
			retry = time.Millisecond
		}
		return ratelimit.Decision{RetryAfter: retry}
	}
	w.timestamps = append(w.timestamps, now)
	return ratelimit.Decision{Allowed: true, Remaining: policy.MaxPerWindow - len(w.timestamps)}
}

func (s *MemoryStore) Prune(_ context.Context, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pruned := 0
	for actorID, w := range s.windows {
		w.mu.Lock()
		w.evict(now, window)
		if len(w.timestamps) == 0 && !now.Before(w.blockedUntil) {
			w.removed = true
			delete(s.windows, actorID)
			pruned++
		}
		w.mu.Unlock()
	}
	return pruned, nil
}

// Len reports how many actors currently hold a record.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}
