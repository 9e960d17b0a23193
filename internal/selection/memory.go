package selection

import (
	"context"
	"sync"
	"time"

	"github.com/hunterjsb/clubscout/internal/club"
)

// MemoryStore is an in-process Store with per-entry expiry.
// It is safe for concurrent use and can purge expired entries in the background.
type MemoryStore struct {
	mu sync.RWMutex

	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedItem[club.PendingSelection] // key: user

	janitorStop chan struct{}
}

// cachedItem wraps a stored value with an expiration time.
type cachedItem[T any] struct {
	value     T
	expiresAt time.Time
}

// NewMemoryStore creates a store whose entries live for ttl.
// If ttl <= 0, 15 minutes is used.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedItem[club.PendingSelection]),
	}
}

// Set stores sel for its user, replacing any previous entry
func (s *MemoryStore) Set(_ context.Context, sel club.PendingSelection) error {
	if sel.User == "" {
		return ErrNoUser
	}

	// Copy the candidates so later caller mutation can't reach the stored list
	copied := sel
	copied.Candidates = append([]club.Candidate(nil), sel.Candidates...)

	s.mu.Lock()
	s.entries[sel.User] = cachedItem[club.PendingSelection]{value: copied, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// Get returns the user's pending selection, if present and not expired
func (s *MemoryStore) Get(_ context.Context, user string) (club.PendingSelection, bool, error) {
	s.mu.RLock()
	item, ok := s.entries[user]
	s.mu.RUnlock()
	if !ok {
		return club.PendingSelection{}, false, nil
	}

	if s.now().After(item.expiresAt) {
		// Expired - evict eagerly
		s.mu.Lock()
		delete(s.entries, user)
		s.mu.Unlock()
		return club.PendingSelection{}, false, nil
	}

	return item.value, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, user string) error {
	s.mu.Lock()
	delete(s.entries, user)
	s.mu.Unlock()
	return nil
}

// PurgeExpired removes expired entries.
// This can be called manually or via the janitor.
func (s *MemoryStore) PurgeExpired() {
	now := s.now()

	s.mu.Lock()
	for k, v := range s.entries {
		if now.After(v.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

// Len returns the number of live entries after purging expired ones
func (s *MemoryStore) Len() int {
	s.PurgeExpired()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// StartJanitor starts a background goroutine that periodically purges expired entries.
// It returns a function that stops the janitor. If interval <= 0, 5 minutes is used.
func (s *MemoryStore) StartJanitor(interval time.Duration) func() {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	s.mu.Lock()
	// If already running, stop the previous one
	if s.janitorStop != nil {
		close(s.janitorStop)
	}
	stop := make(chan struct{})
	s.janitorStop = stop
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.PurgeExpired()
			case <-stop:
				return
			}
		}
	}()

	return func() {
		s.mu.Lock()
		if s.janitorStop == stop {
			close(s.janitorStop)
			s.janitorStop = nil
		}
		s.mu.Unlock()
	}
}
