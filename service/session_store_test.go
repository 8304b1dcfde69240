package service

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"prizedraw/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_GetOrCreate(t *testing.T) {
	store := newSessionStore()

	entry, created := store.getOrCreate(42, 3)
	require.NotNil(t, entry)
	assert.True(t, created)
	assert.Equal(t, 3, entry.snapshot().FreeSpinsRemaining)
	assert.Equal(t, int64(42), entry.snapshot().DiscordID)

	again, created := store.getOrCreate(42, 1)
	assert.False(t, created)
	assert.Same(t, entry, again)
	assert.Equal(t, 1, again.snapshot().FreeSpinsRemaining, "free spins refresh from the account")

	assert.Same(t, entry, store.get(42))
	assert.Nil(t, store.get(7))
	assert.Equal(t, 1, store.count())
}

func TestSessionStore_Delete(t *testing.T) {
	store := newSessionStore()
	store.getOrCreate(42, 0)

	assert.True(t, store.delete(42))
	assert.False(t, store.delete(42))
	assert.Zero(t, store.count())
}

func TestSessionEntry_SingleFlight(t *testing.T) {
	entry := &sessionEntry{}

	var acquired int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if entry.tryAcquire() {
				atomic.AddInt32(&acquired, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired)
	assert.True(t, entry.snapshot().IsSpinning)

	entry.release()
	assert.False(t, entry.snapshot().IsSpinning)
	assert.True(t, entry.tryAcquire())
}

func TestSessionEntry_CommitReplacesSession(t *testing.T) {
	entry := &sessionEntry{session: models.SpinSession{DiscordID: 1, FreeSpinsRemaining: 2}}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	working := entry.snapshot()
	working.FreeSpinsRemaining = 1
	working.IsSpinning = true
	working.LastResult = &models.DrawResult{Message: "won"}

	assert.Equal(t, 2, entry.snapshot().FreeSpinsRemaining, "snapshot is a copy")

	entry.commit(working, now)
	got := entry.snapshot()
	assert.Equal(t, 1, got.FreeSpinsRemaining)
	assert.False(t, got.IsSpinning)
	assert.Equal(t, "won", got.LastResult.Message)
	assert.Equal(t, now, got.LastActivity)
}

func TestSessionStore_CleanupInactive(t *testing.T) {
	store := newSessionStore()
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.getOrCreate(1, 0)
	busy, _ := store.getOrCreate(2, 0)

	current = current.Add(30 * time.Minute)
	store.getOrCreate(3, 0)

	current = current.Add(45 * time.Minute)
	require.True(t, busy.tryAcquire())

	removed := store.cleanupInactive(time.Hour)

	assert.Equal(t, 1, removed)
	assert.Nil(t, store.get(1))
	assert.NotNil(t, store.get(2), "in-flight sessions are kept")
	assert.NotNil(t, store.get(3))
}
