package repository

import (
	"context"
	"errors"
	"fmt"

	"prizedraw/database"
	"prizedraw/models"
	"prizedraw/service"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByDiscordID retrieves a user by their Discord ID
func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.User, error) {
	query := `
		SELECT discord_id, username, balance, free_spins, created_at, updated_at
		FROM users
		WHERE discord_id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.FreeSpins,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by discord ID %d: %w", discordID, err)
	}

	return &user, nil
}

// Create creates a new user with the initial balance and free spins
func (r *UserRepository) Create(ctx context.Context, discordID int64, username string, initialBalance int64, freeSpins int) (*models.User, error) {
	query := `
		INSERT INTO users (discord_id, username, balance, free_spins)
		VALUES ($1, $2, $3, $4)
		RETURNING discord_id, username, balance, free_spins, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, discordID, username, initialBalance, freeSpins).Scan(
		&user.DiscordID,
		&user.Username,
		&user.Balance,
		&user.FreeSpins,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user with discord ID %d: %w", discordID, err)
	}

	return &user, nil
}

// AddBalance adds to a user's balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, discordID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE discord_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, discordID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", discordID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: discord ID %d", service.ErrUserNotFound, discordID)
	}

	return nil
}

// DeductBalance deducts from a user's balance atomically, failing if insufficient funds
func (r *UserRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	// The balance check and the update happen in one statement
	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE discord_id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, discordID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByDiscordID(ctx, discordID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: discord ID %d", service.ErrUserNotFound, discordID)
		}
		return fmt.Errorf("%w: have %d, need %d", service.ErrInsufficientBalance, user.Balance, amount)
	}

	return nil
}

// ConsumeFreeSpin decrements a user's free spins, failing when none are left
func (r *UserRepository) ConsumeFreeSpin(ctx context.Context, discordID int64) error {
	query := `
		UPDATE users
		SET free_spins = free_spins - 1, updated_at = NOW()
		WHERE discord_id = $1 AND free_spins > 0
	`

	result, err := r.q.Exec(ctx, query, discordID)
	if err != nil {
		return fmt.Errorf("failed to consume free spin for user %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByDiscordID(ctx, discordID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: discord ID %d", service.ErrUserNotFound, discordID)
		}
		return service.ErrNoFreeSpins
	}

	return nil
}

// AddFreeSpins grants free spins and returns the user's new total
func (r *UserRepository) AddFreeSpins(ctx context.Context, discordID int64, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("count must be positive")
	}

	query := `
		UPDATE users
		SET free_spins = free_spins + $1, updated_at = NOW()
		WHERE discord_id = $2
		RETURNING free_spins
	`

	var total int
	err := r.q.QueryRow(ctx, query, count, discordID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: discord ID %d", service.ErrUserNotFound, discordID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add free spins for user %d: %w", discordID, err)
	}

	return total, nil
}
