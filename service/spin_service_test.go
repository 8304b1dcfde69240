package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"prizedraw/config"
	"prizedraw/draw"
	"prizedraw/events"
	"prizedraw/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Wheel used by the service tests. Total weight is 100, so a fixed source
// value u lands on the entry covering u*100.
//
//	jackpot  [0,1)   u < 0.01
//	discount [1,10)  0.01 <= u < 0.10
//	bonus    [10,50) 0.10 <= u < 0.50
//	nothing  [50,100)
var testPrizes = []models.PrizeEntry{
	{ID: "jackpot", Label: "Grand Prize", Kind: models.PrizeKindJackpot, Weight: 1},
	{ID: "discount_10", Label: "10% Discount", Kind: models.PrizeKindDiscount, Value: 10, Weight: 9},
	{ID: "bonus_50", Label: "50 Bits", Kind: models.PrizeKindBonus, Value: 50, Weight: 40},
	{ID: "nothing", Label: "No Prize", Kind: models.PrizeKindNothing, Weight: 50},
}

const (
	rollJackpot  = 0.005
	rollDiscount = 0.05
	rollBonus    = 0.3
	rollNothing  = 0.9
)

type spinServiceFixture struct {
	ctx         context.Context
	service     *spinService
	uow         *MockUnitOfWork
	factory     *MockUnitOfWorkFactory
	userRepo    *MockUserRepository
	historyRepo *MockBalanceHistoryRepository
	spinRepo    *MockSpinRepository
	publisher   *MockEventPublisher
	userService *MockUserService
}

func newSpinServiceFixture(t *testing.T, rolls ...float64) *spinServiceFixture {
	t.Helper()

	table, err := draw.NewTable(testPrizes)
	require.NoError(t, err)

	f := &spinServiceFixture{
		ctx:         context.Background(),
		uow:         new(MockUnitOfWork),
		factory:     new(MockUnitOfWorkFactory),
		userRepo:    new(MockUserRepository),
		historyRepo: new(MockBalanceHistoryRepository),
		spinRepo:    new(MockSpinRepository),
		publisher:   new(MockEventPublisher),
		userService: new(MockUserService),
	}
	f.uow.SetRepositories(f.userRepo, f.historyRepo, f.spinRepo)
	f.uow.SetEventPublisher(f.publisher)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("Begin", f.ctx).Return(nil)
	f.uow.On("Rollback").Return(nil)

	cfg := config.NewTestConfig()
	cfg.SpinCost = 100
	engine := draw.NewEngine(table, draw.FixedSource(rolls...))
	f.service = NewSpinService(f.factory, f.userService, engine, cfg).(*spinService)

	return f
}

// enter opens a session for user through the mocked user service
func (f *spinServiceFixture) enter(t *testing.T, user *models.User) {
	t.Helper()
	f.userService.On("GetOrCreateUser", f.ctx, user.DiscordID, user.Username).Return(user, nil).Once()
	_, err := f.service.EnterSession(f.ctx, user.DiscordID, user.Username)
	require.NoError(t, err)
}

func TestSpinService_Spin_NoSession(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)

	result, err := f.service.Spin(f.ctx, 123456)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoSession)
	f.factory.AssertNotCalled(t, "Create")
}

func TestSpinService_Spin_FreeSpinThenInsufficientFunds(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 123456, Username: "player", Balance: 50, FreeSpins: 1}
	f.enter(t, user)

	f.uow.On("Commit").Return(nil).Once()
	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(user, nil).Once()
	f.userRepo.On("ConsumeFreeSpin", f.ctx, int64(123456)).Return(nil).Once()
	f.spinRepo.On("Create", f.ctx, mock.MatchedBy(func(s *models.Spin) bool {
		return s.DiscordID == 123456 &&
			s.PrizeID == "nothing" &&
			s.UsedFreeSpin &&
			s.Charge == 0 &&
			s.BalanceHistoryID == nil
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Spin).ID = 9
	})
	f.publisher.On("Publish", events.SpinCompletedEvent{
		UserID:       123456,
		SpinID:       9,
		PrizeID:      "nothing",
		PrizeKind:    models.PrizeKindNothing,
		UsedFreeSpin: true,
	}).Return().Once()

	result, err := f.service.Spin(f.ctx, 123456)
	require.NoError(t, err)
	assert.True(t, result.UsedFreeSpin)
	assert.False(t, result.ChargeRequired)
	assert.Equal(t, int64(50), result.NewBalance)
	assert.Equal(t, 0, f.service.sessions.get(123456).snapshot().FreeSpinsRemaining)

	// Second spin: the account now has no free spins and 50 < 100
	drained := &models.User{DiscordID: 123456, Username: "player", Balance: 50, FreeSpins: 0}
	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(drained, nil).Once()

	result, err = f.service.Spin(f.ctx, 123456)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, draw.ErrInsufficientFunds)

	session := f.service.sessions.get(123456).snapshot()
	assert.False(t, session.IsSpinning)
	require.NotNil(t, session.LastResult)
	assert.Equal(t, "nothing", session.LastResult.Prize.ID)

	f.userRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	f.uow.AssertNumberOfCalls(t, "Commit", 1)
	f.userRepo.AssertExpectations(t)
	f.spinRepo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestSpinService_Spin_PaidBonusSpin(t *testing.T) {
	f := newSpinServiceFixture(t, rollBonus)
	user := &models.User{DiscordID: 123456, Username: "player", Balance: 1000}
	f.enter(t, user)

	f.uow.On("Commit").Return(nil).Once()
	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(user, nil)
	f.userRepo.On("DeductBalance", f.ctx, int64(123456), int64(100)).Return(nil)
	f.userRepo.On("AddBalance", f.ctx, int64(123456), int64(50)).Return(nil)

	f.historyRepo.On("Record", f.ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeSpinCost &&
			h.BalanceBefore == 1000 &&
			h.BalanceAfter == 900 &&
			h.ChangeAmount == -100
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.BalanceHistory).ID = 42
	})
	f.historyRepo.On("Record", f.ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeSpinBonus &&
			h.BalanceBefore == 900 &&
			h.BalanceAfter == 950 &&
			h.ChangeAmount == 50
	})).Return(nil)

	f.spinRepo.On("Create", f.ctx, mock.MatchedBy(func(s *models.Spin) bool {
		return s.PrizeID == "bonus_50" &&
			!s.UsedFreeSpin &&
			s.Charge == 100 &&
			s.BonusCredited == 50 &&
			s.BalanceHistoryID != nil && *s.BalanceHistoryID == 42
	})).Return(nil)

	f.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return().Twice()
	f.publisher.On("Publish", mock.AnythingOfType("events.SpinCompletedEvent")).Return().Once()

	result, err := f.service.Spin(f.ctx, 123456)

	require.NoError(t, err)
	assert.True(t, result.ChargeRequired)
	assert.Equal(t, int64(100), result.Charge)
	assert.Equal(t, "bonus_50", result.Prize.ID)
	assert.Equal(t, int64(950), result.NewBalance)
	assert.Equal(t, draw.FormatMessage(result.Prize), result.Message)

	f.userRepo.AssertExpectations(t)
	f.historyRepo.AssertExpectations(t)
	f.spinRepo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestSpinService_Spin_JackpotPublishesPrizeAwarded(t *testing.T) {
	f := newSpinServiceFixture(t, rollJackpot)
	user := &models.User{DiscordID: 123456, Username: "player", Balance: 0, FreeSpins: 3}
	f.enter(t, user)

	f.uow.On("Commit").Return(nil)
	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(user, nil)
	f.userRepo.On("ConsumeFreeSpin", f.ctx, int64(123456)).Return(nil)
	f.spinRepo.On("Create", f.ctx, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Spin).ID = 77
	})
	f.publisher.On("Publish", mock.AnythingOfType("events.SpinCompletedEvent")).Return()
	f.publisher.On("Publish", events.PrizeAwardedEvent{
		UserID:   123456,
		Username: "player",
		SpinID:   77,
		Prize:    testPrizes[0],
	}).Return().Once()

	result, err := f.service.Spin(f.ctx, 123456)

	require.NoError(t, err)
	assert.Equal(t, models.PrizeKindJackpot, result.Prize.Kind)
	assert.Equal(t, 2, f.service.sessions.get(123456).snapshot().FreeSpinsRemaining)
	f.publisher.AssertExpectations(t)
}

func TestSpinService_Spin_DiscountPublishesPrizeAwarded(t *testing.T) {
	f := newSpinServiceFixture(t, rollDiscount)
	user := &models.User{DiscordID: 1, Username: "player", Balance: 500}
	f.enter(t, user)

	f.uow.On("Commit").Return(nil)
	f.userRepo.On("GetByDiscordID", f.ctx, int64(1)).Return(user, nil)
	f.userRepo.On("DeductBalance", f.ctx, int64(1), int64(100)).Return(nil)
	f.historyRepo.On("Record", f.ctx, mock.Anything).Return(nil)
	f.spinRepo.On("Create", f.ctx, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()
	f.publisher.On("Publish", mock.AnythingOfType("events.SpinCompletedEvent")).Return()
	f.publisher.On("Publish", mock.AnythingOfType("events.PrizeAwardedEvent")).Return().Once()

	result, err := f.service.Spin(f.ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, "discount_10", result.Prize.ID)
	assert.Equal(t, int64(400), result.NewBalance)
	f.userRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	f.publisher.AssertExpectations(t)
}

func TestSpinService_Spin_DeductionRaceMapsToInsufficientFunds(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 123456, Username: "player", Balance: 100}
	f.enter(t, user)

	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(user, nil)
	f.userRepo.On("DeductBalance", f.ctx, int64(123456), int64(100)).
		Return(fmt.Errorf("%w: have 20, need 100", ErrInsufficientBalance))

	result, err := f.service.Spin(f.ctx, 123456)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, draw.ErrInsufficientFunds)
	assert.Nil(t, f.service.sessions.get(123456).snapshot().LastResult)
	f.uow.AssertNotCalled(t, "Commit")
	f.spinRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSpinService_Spin_FreeSpinRaceMapsToAlreadySpinning(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 123456, Username: "player", Balance: 1000, FreeSpins: 1}
	f.enter(t, user)

	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(user, nil)
	f.userRepo.On("ConsumeFreeSpin", f.ctx, int64(123456)).
		Return(fmt.Errorf("user 123456: %w", ErrNoFreeSpins))

	result, err := f.service.Spin(f.ctx, 123456)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, draw.ErrAlreadySpinning)
	assert.NotContains(t, err.Error(), "failed to consume free spin")

	session := f.service.sessions.get(123456).snapshot()
	assert.Equal(t, 1, session.FreeSpinsRemaining)
	assert.Nil(t, session.LastResult)
	assert.False(t, session.IsSpinning)
	f.uow.AssertNotCalled(t, "Commit")
	f.userRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	f.spinRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSpinService_Spin_PersistenceFailureKeepsSession(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 123456, Username: "player", FreeSpins: 2}
	f.enter(t, user)

	f.userRepo.On("GetByDiscordID", f.ctx, int64(123456)).Return(user, nil)
	f.userRepo.On("ConsumeFreeSpin", f.ctx, int64(123456)).Return(nil)
	f.spinRepo.On("Create", f.ctx, mock.Anything).Return(errors.New("database error"))

	result, err := f.service.Spin(f.ctx, 123456)

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create spin record")

	session := f.service.sessions.get(123456).snapshot()
	assert.Equal(t, 2, session.FreeSpinsRemaining)
	assert.Nil(t, session.LastResult)
	assert.False(t, session.IsSpinning)
	f.uow.AssertNotCalled(t, "Commit")
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestSpinService_Spin_RejectsWhileInFlight(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 123456, Username: "player", FreeSpins: 1}
	f.enter(t, user)

	entry := f.service.sessions.get(123456)
	require.True(t, entry.tryAcquire())
	before := entry.snapshot()

	result, err := f.service.Spin(f.ctx, 123456)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, draw.ErrAlreadySpinning)
	assert.Equal(t, before, entry.snapshot())
	f.factory.AssertNotCalled(t, "Create")

	entry.release()
}

func TestSpinService_GetSession(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)

	_, err := f.service.GetSession(f.ctx, 5)
	assert.ErrorIs(t, err, ErrNoSession)

	user := &models.User{DiscordID: 5, Username: "player", Balance: 99}
	f.enter(t, user)
	f.userService.On("GetUser", f.ctx, int64(5)).Return(user, nil)

	view, err := f.service.GetSession(f.ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(99), view.Balance)
	assert.Equal(t, int64(100), view.SpinCost)
	assert.False(t, view.CanSpin)
	assert.False(t, view.IsSpinning)

	canSpin, err := f.service.CanSpin(f.ctx, 5)
	require.NoError(t, err)
	assert.False(t, canSpin)
}

func TestSpinService_EnterSession_ReturnsView(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 5, Username: "player", Balance: 0, FreeSpins: 3}
	f.userService.On("GetOrCreateUser", f.ctx, int64(5), "player").Return(user, nil)

	view, err := f.service.EnterSession(f.ctx, 5, "player")

	require.NoError(t, err)
	assert.Equal(t, 3, view.FreeSpinsRemaining)
	assert.True(t, view.CanSpin)
	assert.Equal(t, 1, f.service.sessions.count())

	assert.True(t, f.service.LeaveSession(5))
	assert.False(t, f.service.LeaveSession(5))
}

func TestSpinService_EnterSession_UserError(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	f.userService.On("GetOrCreateUser", f.ctx, int64(5), "player").Return(nil, errors.New("database error"))

	view, err := f.service.EnterSession(f.ctx, 5, "player")

	assert.Nil(t, view)
	assert.Error(t, err)
	assert.Zero(t, f.service.sessions.count())
}

func TestSpinService_GrantFreeSpins(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	user := &models.User{DiscordID: 5, Username: "player"}
	f.enter(t, user)

	f.uow.On("Commit").Return(nil)
	f.userRepo.On("AddFreeSpins", f.ctx, int64(5), 2).Return(2, nil)

	total, err := f.service.GrantFreeSpins(f.ctx, 5, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, f.service.sessions.get(5).snapshot().FreeSpinsRemaining)

	_, err = f.service.GrantFreeSpins(f.ctx, 5, 0)
	assert.Error(t, err)
}

func TestSpinService_GrantFreeSpins_UnknownUser(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	f.userRepo.On("AddFreeSpins", f.ctx, int64(5), 1).Return(0, ErrUserNotFound)

	_, err := f.service.GrantFreeSpins(f.ctx, 5, 1)

	assert.ErrorIs(t, err, ErrUserNotFound)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestSpinService_Prizes(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)

	odds := f.service.Prizes()

	require.Len(t, odds, len(testPrizes))
	assert.Equal(t, "jackpot", odds[0].Prize.ID)
	assert.InDelta(t, 0.01, odds[0].Probability, 1e-12)
	assert.InDelta(t, 0.5, odds[3].Probability, 1e-12)
	assert.Equal(t, int64(100), f.service.Cost())
}

func TestSpinService_GetHistoryAndStats(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	spins := []*models.Spin{{ID: 1, DiscordID: 5, PrizeID: "nothing"}}
	stats := &models.SpinStats{TotalSpins: 1}

	f.spinRepo.On("GetByUser", f.ctx, int64(5), defaultHistoryLimit).Return(spins, nil)
	f.spinRepo.On("GetStats", f.ctx, int64(5)).Return(stats, nil)

	gotSpins, err := f.service.GetHistory(f.ctx, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, spins, gotSpins)

	gotStats, err := f.service.GetStats(f.ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, stats, gotStats)
}

func TestSpinService_CleanupInactiveSessions(t *testing.T) {
	f := newSpinServiceFixture(t, rollNothing)
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f.service.sessions.now = func() time.Time { return current }

	f.enter(t, &models.User{DiscordID: 1, Username: "idle"})
	current = current.Add(2 * time.Hour)
	f.enter(t, &models.User{DiscordID: 2, Username: "active"})

	removed := f.service.CleanupInactiveSessions()

	assert.Equal(t, 1, removed)
	assert.Nil(t, f.service.sessions.get(1))
	assert.NotNil(t, f.service.sessions.get(2))
}
