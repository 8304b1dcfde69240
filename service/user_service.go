package service

import (
	"context"
	"fmt"

	"prizedraw/config"
	"prizedraw/models"

	log "github.com/sirupsen/logrus"
)

// userService implements the UserService interface
type userService struct {
	uowFactory        UnitOfWorkFactory
	startingBalance   int64
	startingFreeSpins int
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory:        uowFactory,
		startingBalance:   cfg.StartingBalance,
		startingFreeSpins: cfg.StartingFreeSpins,
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the starting balance
func (s *userService) GetOrCreateUser(ctx context.Context, discordID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	// The discord_id primary key rejects a concurrent duplicate create
	user, err = uow.UserRepository().Create(ctx, discordID, username, s.startingBalance, s.startingFreeSpins)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		DiscordID:       discordID,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username":   username,
			"free_spins": s.startingFreeSpins,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"username":  username,
		"balance":   s.startingBalance,
		"freeSpins": s.startingFreeSpins,
	}).Info("Created new user")

	return user, nil
}

// GetUser retrieves a user by Discord ID
func (s *userService) GetUser(ctx context.Context, discordID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetBalanceHistory returns recent balance changes for a user
func (s *userService) GetBalanceHistory(ctx context.Context, discordID int64, limit int) ([]*models.BalanceHistory, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByUser(ctx, discordID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}
	return history, nil
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	}
	return limit
}
