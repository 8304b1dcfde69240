package repository

import (
	"context"
	"sync"
	"testing"

	"prizedraw/events"
	"prizedraw/models"
	"prizedraw/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	var mu sync.Mutex
	var received []events.Event
	bus.Subscribe(events.EventTypeSpinCompleted, func(ctx context.Context, event events.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
	})

	t.Run("commit persists and flushes events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.UserRepository().Create(ctx, 100, "player", 1000, 0)
		require.NoError(t, err)
		require.NoError(t, uow.SpinRepository().Create(ctx, testutil.CreateTestSpin(100, models.PrizeKindNothing, false, 100)))
		uow.EventBus().Publish(events.SpinCompletedEvent{UserID: 100})

		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback(), "rollback after commit is a no-op")
		bus.Wait()

		user, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, 100)
		require.NoError(t, err)
		assert.NotNil(t, user)

		mu.Lock()
		assert.Len(t, received, 1)
		mu.Unlock()
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		require.NoError(t, uow.UserRepository().DeductBalance(ctx, 100, 500))
		uow.EventBus().Publish(events.SpinCompletedEvent{UserID: 100})
		require.NoError(t, uow.Rollback())

		bus.Wait()

		user, err := NewUserRepository(testDB.DB).GetByDiscordID(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), user.Balance)

		mu.Lock()
		assert.Len(t, received, 1)
		mu.Unlock()
	})

	t.Run("repositories require begin", func(t *testing.T) {
		uow := factory.Create()
		assert.Panics(t, func() { uow.UserRepository() })
		assert.Error(t, uow.Commit())
	})

	t.Run("double begin fails", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		assert.Error(t, uow.Begin(ctx))
	})
}
