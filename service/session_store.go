package service

import (
	"sync"
	"sync/atomic"
	"time"

	"prizedraw/models"
)

// sessionEntry holds one player's session. inFlight is the single-flight
// guard: a spin that cannot flip it from false to true is rejected.
type sessionEntry struct {
	inFlight atomic.Bool

	mu      sync.Mutex
	session models.SpinSession
}

func (e *sessionEntry) tryAcquire() bool {
	return e.inFlight.CompareAndSwap(false, true)
}

func (e *sessionEntry) release() {
	e.inFlight.Store(false)
}

// snapshot returns a copy the caller may mutate freely
func (e *sessionEntry) snapshot() models.SpinSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session
	s.IsSpinning = s.IsSpinning || e.inFlight.Load()
	return s
}

// commit replaces the stored session with the result of a successful spin
func (e *sessionEntry) commit(s models.SpinSession, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s.IsSpinning = false
	s.LastActivity = now
	e.session = s
}

func (e *sessionEntry) setFreeSpins(n int, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.FreeSpinsRemaining = n
	e.session.LastActivity = now
}

func (e *sessionEntry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.LastActivity
}

// sessionStore keeps transient spin sessions in memory, keyed by Discord ID
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*sessionEntry
	now      func() time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[int64]*sessionEntry),
		now:      time.Now,
	}
}

func (s *sessionStore) get(discordID int64) *sessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[discordID]
}

// getOrCreate returns the player's entry, creating it with freeSpins if absent.
// An existing entry has its free spins refreshed from the account.
func (s *sessionStore) getOrCreate(discordID int64, freeSpins int) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.sessions[discordID]; ok {
		entry.setFreeSpins(freeSpins, now)
		return entry, false
	}

	entry := &sessionEntry{
		session: models.SpinSession{
			DiscordID:          discordID,
			FreeSpinsRemaining: freeSpins,
			StartedAt:          now,
			LastActivity:       now,
		},
	}
	s.sessions[discordID] = entry
	return entry, true
}

func (s *sessionStore) delete(discordID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[discordID]
	delete(s.sessions, discordID)
	return ok
}

// cleanupInactive removes sessions idle for longer than ttl.
// Sessions with a spin in flight are kept.
func (s *sessionStore) cleanupInactive(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for discordID, entry := range s.sessions {
		if entry.inFlight.Load() {
			continue
		}
		if entry.idleSince().Before(cutoff) {
			delete(s.sessions, discordID)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
