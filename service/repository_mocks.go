package service

import (
	"context"

	"prizedraw/events"
	"prizedraw/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64, freeSpins int) (*models.User, error) {
	args := m.Called(ctx, discordID, username, initialBalance, freeSpins)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) error {
	args := m.Called(ctx, discordID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeFreeSpin(ctx context.Context, discordID int64) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

func (m *MockUserRepository) AddFreeSpins(ctx context.Context, discordID int64, count int) (int, error) {
	args := m.Called(ctx, discordID, count)
	return args.Int(0), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockSpinRepository is a mock implementation of SpinRepository
type MockSpinRepository struct {
	mock.Mock
}

func (m *MockSpinRepository) Create(ctx context.Context, spin *models.Spin) error {
	args := m.Called(ctx, spin)
	return args.Error(0)
}

func (m *MockSpinRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.Spin, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Spin), args.Error(1)
}

func (m *MockSpinRepository) GetStats(ctx context.Context, discordID int64) (*models.SpinStats, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpinStats), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repositories are plain fields set with SetRepositories; only the
// transaction calls are recorded.
type MockUnitOfWork struct {
	mock.Mock

	userRepo           UserRepository
	balanceHistoryRepo BalanceHistoryRepository
	spinRepo           SpinRepository
	eventPublisher     EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, spinRepo SpinRepository) {
	m.userRepo = userRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	m.spinRepo = spinRepo
}

// SetEventPublisher wires the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventPublisher(publisher EventPublisher) {
	m.eventPublisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) SpinRepository() SpinRepository {
	return m.spinRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, discordID int64) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetBalanceHistory(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockSpinService is a mock implementation of SpinService
type MockSpinService struct {
	mock.Mock
}

func (m *MockSpinService) EnterSession(ctx context.Context, discordID int64, username string) (*models.SessionView, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockSpinService) GetSession(ctx context.Context, discordID int64) (*models.SessionView, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionView), args.Error(1)
}

func (m *MockSpinService) LeaveSession(discordID int64) bool {
	args := m.Called(discordID)
	return args.Bool(0)
}

func (m *MockSpinService) CanSpin(ctx context.Context, discordID int64) (bool, error) {
	args := m.Called(ctx, discordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpinService) Spin(ctx context.Context, discordID int64) (*models.DrawResult, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DrawResult), args.Error(1)
}

func (m *MockSpinService) GrantFreeSpins(ctx context.Context, discordID int64, count int) (int, error) {
	args := m.Called(ctx, discordID, count)
	return args.Int(0), args.Error(1)
}

func (m *MockSpinService) GetHistory(ctx context.Context, discordID int64, limit int) ([]*models.Spin, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Spin), args.Error(1)
}

func (m *MockSpinService) GetStats(ctx context.Context, discordID int64) (*models.SpinStats, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SpinStats), args.Error(1)
}

func (m *MockSpinService) Prizes() []models.PrizeOdds {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.PrizeOdds)
}

func (m *MockSpinService) Cost() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockSpinService) CleanupInactiveSessions() int {
	args := m.Called()
	return args.Int(0)
}
