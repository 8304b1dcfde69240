package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"prizedraw/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversToMainBus(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan SpinCompletedEvent, 1)
	mainBus.Subscribe(EventTypeSpinCompleted, func(ctx context.Context, event Event) {
		if spinEvent, ok := event.(SpinCompletedEvent); ok {
			received <- spinEvent
		}
	})

	testEvent := SpinCompletedEvent{
		UserID:    123456,
		SpinID:    7,
		PrizeID:   "bonus_50",
		PrizeKind: models.PrizeKindBonus,
		Charge:    100,
	}
	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	transactionalBus.Flush()
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	calls := 0
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	transactionalBus.Publish(BalanceChangeEvent{UserID: 1, ChangeAmount: -100})
	transactionalBus.Discard()
	transactionalBus.Flush()
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestBus_EmitPreservesEventsAcrossHandlers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var got []EventType

	for i := 0; i < 3; i++ {
		wg.Add(1)
		bus.Subscribe(EventTypePrizeAwarded, func(ctx context.Context, event Event) {
			defer wg.Done()
			mu.Lock()
			got = append(got, event.Type())
			mu.Unlock()
		})
	}

	bus.Emit(context.Background(), PrizeAwardedEvent{UserID: 1, Prize: models.PrizeEntry{ID: "jackpot", Kind: models.PrizeKindJackpot}})
	wg.Wait()

	require.Len(t, got, 3)
	for _, eventType := range got {
		assert.Equal(t, EventTypePrizeAwarded, eventType)
	}
}

func TestBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		close(done)
	})

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), UserCreatedEvent{UserID: 1, Username: "player"})
		bus.Wait()
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler was not called")
	}
}

func TestBus_NoHandlers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), BalanceChangeEvent{UserID: 1})
		bus.Wait()
	})
}
