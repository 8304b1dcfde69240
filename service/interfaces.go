package service

import (
	"context"

	"prizedraw/events"
	"prizedraw/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByDiscordID retrieves a user by their Discord ID, nil if absent
	GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error)

	// Create creates a new user with the initial balance and free spins
	Create(ctx context.Context, discordID int64, username string, initialBalance int64, freeSpins int) (*models.User, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, discordID int64, amount int64) error

	// DeductBalance deducts from a user's balance atomically.
	// Fails with ErrInsufficientBalance when the balance does not cover amount.
	DeductBalance(ctx context.Context, discordID int64, amount int64) error

	// ConsumeFreeSpin decrements the user's free spins, failing with ErrNoFreeSpins at zero
	ConsumeFreeSpin(ctx context.Context, discordID int64) error

	// AddFreeSpins grants free spins and returns the new total
	AddFreeSpins(ctx context.Context, discordID int64, count int) (int, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user, newest first
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// SpinRepository defines the interface for spin records
type SpinRepository interface {
	// Create persists a spin and sets its ID and CreatedAt
	Create(ctx context.Context, spin *models.Spin) error

	// GetByUser returns a user's spins, newest first
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*models.Spin, error)

	// GetStats aggregates a user's spins
	GetStats(ctx context.Context, discordID int64) (*models.SpinStats, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls into one transaction.
// Repositories may only be used between Begin and Commit/Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	SpinRepository() SpinRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates one with the starting balance and free spins
	GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error)

	// GetUser retrieves a user, failing with ErrUserNotFound if absent
	GetUser(ctx context.Context, discordID int64) (*models.User, error)

	// GetBalanceHistory returns recent balance changes, newest first
	GetBalanceHistory(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error)
}

// SpinService orchestrates prize wheel sessions and spins
type SpinService interface {
	// EnterSession opens the wheel for a player, creating their account on first visit
	EnterSession(ctx context.Context, discordID int64, username string) (*models.SessionView, error)

	// GetSession returns the player's session, failing with ErrNoSession if not entered
	GetSession(ctx context.Context, discordID int64) (*models.SessionView, error)

	// LeaveSession discards the player's session, reporting whether one existed
	LeaveSession(discordID int64) bool

	// CanSpin reports whether the player may spin right now
	CanSpin(ctx context.Context, discordID int64) (bool, error)

	// Spin draws a prize, consuming a free spin or charging the spin cost
	Spin(ctx context.Context, discordID int64) (*models.DrawResult, error)

	// GrantFreeSpins adds free spins to a player's account and returns the new total
	GrantFreeSpins(ctx context.Context, discordID int64, count int) (int, error)

	// GetHistory returns the player's recent spins
	GetHistory(ctx context.Context, discordID int64, limit int) ([]*models.Spin, error)

	// GetStats aggregates the player's spins
	GetStats(ctx context.Context, discordID int64) (*models.SpinStats, error)

	// Prizes returns the wheel with normalized probabilities in table order
	Prizes() []models.PrizeOdds

	// Cost returns the balance charged for a paid spin
	Cost() int64

	// CleanupInactiveSessions drops idle sessions and returns how many were removed
	CleanupInactiveSessions() int
}
