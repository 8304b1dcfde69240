package bot

import (
	"sync"
	"time"
)

// revealGuard tracks players whose wheel is still animating. A player holds
// the guard from the moment /spin is accepted until the result is revealed.
type revealGuard struct {
	mu     sync.Mutex
	active map[int64]time.Time
}

func newRevealGuard() *revealGuard {
	return &revealGuard{active: make(map[int64]time.Time)}
}

// tryAcquire marks discordID as revealing, failing if a reveal is already running
func (g *revealGuard) tryAcquire(discordID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[discordID]; busy {
		return false
	}
	g.active[discordID] = time.Now()
	return true
}

func (g *revealGuard) release(discordID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, discordID)
}
