// AngelaMos | 2026
// store.go

// Package session keeps short-lived, per-viewer UI state in memory. Nothing
// stored here survives a restart.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/resource-directory/internal/core"
)

type Config struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
	MaxPerOwner     int
}

type entry[T any] struct {
	value      T
	owner      string
	lastAccess time.Time
}

type Store[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	config  Config
	now     func() time.Time
}

func NewStore[T any](cfg Config) *Store[T] {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Minute
	}

	return &Store[T]{
		entries: make(map[string]*entry[T]),
		config:  cfg,
		now:     time.Now,
	}
}

// Put stores value for owner and returns its new id. When the owner already
// holds MaxPerOwner sessions the least recently used one is evicted.
func (s *Store[T]) Put(owner string, value T) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.MaxPerOwner > 0 {
		s.evictOldestLocked(owner)
	}

	id := uuid.New().String()
	s.entries[id] = &entry[T]{
		value:      value,
		owner:      owner,
		lastAccess: s.now(),
	}

	return id
}

func (s *Store[T]) evictOldestLocked(owner string) {
	var (
		count    int
		oldestID string
		oldest   time.Time
	)

	for id, e := range s.entries {
		if e.owner != owner {
			continue
		}
		count++
		if oldestID == "" || e.lastAccess.Before(oldest) {
			oldestID = id
			oldest = e.lastAccess
		}
	}

	if count >= s.config.MaxPerOwner && oldestID != "" {
		delete(s.entries, oldestID)
	}
}

// Get returns the session only to the owner that created it. Sessions of
// other owners are reported as not found.
func (s *Store[T]) Get(owner, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T

	e, ok := s.entries[id]
	if !ok || e.owner != owner {
		return zero, fmt.Errorf("get session: %w", core.ErrNotFound)
	}

	now := s.now()
	if now.Sub(e.lastAccess) > s.config.IdleTTL {
		delete(s.entries, id)
		return zero, fmt.Errorf("get session: expired: %w", core.ErrNotFound)
	}

	e.lastAccess = now
	return e.value, nil
}

func (s *Store[T]) Delete(owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.owner != owner {
		return fmt.Errorf("delete session: %w", core.ErrNotFound)
	}

	delete(s.entries, id)
	return nil
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops every session idle for longer than the TTL and returns how
// many were removed.
func (s *Store[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.config.IdleTTL)
	removed := 0
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}

	return removed
}

// Start sweeps on CleanupInterval until ctx is cancelled.
func (s *Store[T]) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.config.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}
